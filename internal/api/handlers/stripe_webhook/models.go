package stripe_webhook

import completePayment "github.com/m04kA/SMC-StudioBooking/internal/usecase/complete_payment"

// WebhookResponse подтверждение получения события
type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}

func FromUseCaseResponse(resp *completePayment.Response) *WebhookResponse {
	return &WebhookResponse{
		Received: true,
		Outcome:  string(resp.Outcome),
	}
}
