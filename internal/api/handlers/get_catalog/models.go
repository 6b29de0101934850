package get_catalog

import "github.com/m04kA/SMC-StudioBooking/internal/domain"

// CatalogResponse HTTP response model
type CatalogResponse struct {
	TotalBays int            `json:"totalBays"`
	Offerings []OfferingView `json:"offerings"`
	PassTypes []PassTypeView `json:"passTypes"`
	TimeSlots []TimeSlotView `json:"timeSlots"`
}

type OfferingView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ResourceCost int    `json:"resourceCost"`
	PriceCents   int64  `json:"priceCents"`
	Schedule     string `json:"schedule"`
}

type PassTypeView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ClassCount   int    `json:"classCount"`
	ValidityDays int    `json:"validityDays"`
	PriceCents   int64  `json:"priceCents"`
	Schedule     string `json:"schedule"`
}

type TimeSlotView struct {
	ID        int64  `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"` // 0 = воскресенье
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func newCatalogResponse(totalBays int, offerings []*domain.OfferingType, passTypes []*domain.PassType, slots []*domain.TimeSlot) *CatalogResponse {
	resp := &CatalogResponse{
		TotalBays: totalBays,
		Offerings: make([]OfferingView, 0, len(offerings)),
		PassTypes: make([]PassTypeView, 0, len(passTypes)),
		TimeSlots: make([]TimeSlotView, 0, len(slots)),
	}

	for _, o := range offerings {
		resp.Offerings = append(resp.Offerings, OfferingView{
			ID:           o.ID,
			Name:         o.Name,
			ResourceCost: o.ResourceCost,
			PriceCents:   o.PriceCents,
			Schedule:     string(o.Schedule),
		})
	}
	for _, p := range passTypes {
		resp.PassTypes = append(resp.PassTypes, PassTypeView{
			ID:           p.ID,
			Name:         p.Name,
			ClassCount:   p.ClassCount,
			ValidityDays: p.ValidityDays,
			PriceCents:   p.PriceCents,
			Schedule:     string(p.Schedule),
		})
	}
	for _, s := range slots {
		resp.TimeSlots = append(resp.TimeSlots, TimeSlotView{
			ID:        s.ID,
			DayOfWeek: int(s.DayOfWeek),
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
		})
	}
	return resp
}
