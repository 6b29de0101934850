package stripe

// CheckoutParams параметры hosted checkout на одну позицию
type CheckoutParams struct {
	ProductName   string
	AmountCents   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Refund результат возврата
type Refund struct {
	ID     string
	Status string
}
