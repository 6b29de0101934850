package ttlock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент TTLock Open API для временных кодов одного замка
type Client struct {
	baseURL    string
	clientID   string
	lockID     int64
	httpClient *http.Client
	tokens     *tokenProvider
	now        func() time.Time
	log        Logger
}

// NewClient создает новый экземпляр клиента TTLock
func NewClient(cfg Config, cache TokenCache, log Logger) *Client {
	if cache == nil {
		cache = NewMemoryTokenCache()
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		clientID:   cfg.ClientID,
		lockID:     cfg.LockID,
		httpClient: httpClient,
		tokens:     newTokenProvider(cfg, cache, httpClient, log),
		now:        time.Now,
		log:        log,
	}
}

// AddPasscode создает на замке код, действующий в окне [from, until]
func (c *Client) AddPasscode(ctx context.Context, code, name string, from, until time.Time) (*Passcode, error) {
	form := url.Values{}
	form.Set("lockId", strconv.FormatInt(c.lockID, 10))
	form.Set("keyboardPwd", code)
	form.Set("keyboardPwdName", name)
	form.Set("startDate", strconv.FormatInt(from.UnixMilli(), 10))
	form.Set("endDate", strconv.FormatInt(until.UnixMilli(), 10))
	form.Set("addType", addTypeGateway)

	resp, err := c.call(ctx, "/v3/keyboardPwd/add", form)
	if err != nil {
		return nil, err
	}
	if resp.KeyboardPwdID == 0 {
		return nil, fmt.Errorf("%w: keyboardPwdId missing", ErrInvalidResponse)
	}

	c.log.Info("AddPasscode: lock=%d, passcode id=%d, window %s - %s",
		c.lockID, resp.KeyboardPwdID, from.Format(time.RFC3339), until.Format(time.RFC3339))

	return &Passcode{
		ExternalID: strconv.FormatInt(resp.KeyboardPwdID, 10),
		Code:       code,
		ValidFrom:  from,
		ValidUntil: until,
	}, nil
}

// DeletePasscode удаляет код с замка по его внешнему идентификатору
func (c *Client) DeletePasscode(ctx context.Context, externalID string) error {
	form := url.Values{}
	form.Set("lockId", strconv.FormatInt(c.lockID, 10))
	form.Set("keyboardPwdId", externalID)
	form.Set("deleteType", deleteTypeGateway)

	if _, err := c.call(ctx, "/v3/keyboardPwd/delete", form); err != nil {
		return err
	}

	c.log.Info("DeletePasscode: lock=%d, passcode id=%s deleted", c.lockID, externalID)
	return nil
}

// call выполняет запрос и один раз повторяет его с новым токеном, если старый отвергнут
func (c *Client) call(ctx context.Context, path string, form url.Values) (*apiResponse, error) {
	resp, err := c.do(ctx, path, form)
	if err != nil {
		return nil, err
	}
	if resp.ErrCode == errCodeInvalidToken || resp.ErrCode == errCodeTokenExpired {
		c.log.Warn("ttlock: access token rejected (errcode=%d), refreshing", resp.ErrCode)
		c.tokens.Invalidate(ctx)
		if resp, err = c.do(ctx, path, form); err != nil {
			return nil, err
		}
	}
	if resp.ErrCode != 0 {
		return nil, fmt.Errorf("%w: %s errcode=%d: %s", ErrVendor, path, resp.ErrCode, resp.ErrMsg)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, path string, form url.Values) (*apiResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body := url.Values{}
	for k, v := range form {
		body[k] = v
	}
	body.Set("clientId", c.clientID)
	body.Set("accessToken", token)
	body.Set("date", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s status %d: %s", ErrUpstream, path, resp.StatusCode, string(raw))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return &out, nil
}
