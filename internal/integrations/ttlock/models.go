package ttlock

import "time"

// Config параметры подключения к TTLock Open API
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string // открытый пароль, API принимает его md5
	LockID       int64
	Timeout      time.Duration
}

// Passcode временный код, созданный на замке
type Passcode struct {
	ExternalID string
	Code       string
	ValidFrom  time.Time
	ValidUntil time.Time
}

type apiResponse struct {
	ErrCode       int    `json:"errcode"`
	ErrMsg        string `json:"errmsg"`
	KeyboardPwdID int64  `json:"keyboardPwdId"`
}

// Коды ошибок TTLock, при которых токен нужно получить заново
const (
	errCodeInvalidToken = 10003
	errCodeTokenExpired = 10004
)

const (
	addTypeGateway    = "2" // код отправляется на замок через шлюз
	deleteTypeGateway = "2"
)
