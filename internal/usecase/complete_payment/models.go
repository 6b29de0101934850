package complete_payment

// Outcome итог обработки события
type Outcome string

const (
	OutcomeReservation     Outcome = "reservation"
	OutcomePass            Outcome = "pass"
	OutcomeDuplicate       Outcome = "duplicate"
	OutcomeRefundPending   Outcome = "refund_pending"
	OutcomeIgnored         Outcome = "ignored"
	OutcomeInvalidMetadata Outcome = "invalid_metadata"
	OutcomeRejected        Outcome = "invalid_signature"
	OutcomeFailed          Outcome = "failed"
)

// Request сырое тело вебхука и заголовок подписи
type Request struct {
	Payload   []byte
	Signature string
}

// Response итог обработки, на любой успешный исход провайдеру отвечаем 2xx
type Response struct {
	Outcome        Outcome
	SessionID      string
	PaymentID      int64
	ReservationID  *int64
	PassInstanceID *int64
}
