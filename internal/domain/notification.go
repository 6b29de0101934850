package domain

// EmailMessage письмо клиенту, готовое к отправке провайдером
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
	// Ключ вида "reservation:42:confirmed", по нему провайдер и очередь отбрасывают дубли
	Key string `json:"key"`
}
