package ttlock

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// tokenSafetyMargin токен считается истёкшим раньше срока
const tokenSafetyMargin = 5 * time.Minute

// tokenProvider получает токен по password grant и кэширует его
type tokenProvider struct {
	oauth      *oauth2.Config
	username   string
	passMD5    string
	cache      TokenCache
	cacheKey   string
	httpClient *http.Client
	mu         sync.Mutex
	log        Logger
}

func newTokenProvider(cfg Config, cache TokenCache, httpClient *http.Client, log Logger) *tokenProvider {
	sum := md5.Sum([]byte(cfg.Password))
	return &tokenProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(cfg.BaseURL, "/") + "/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username:   cfg.Username,
		passMD5:    hex.EncodeToString(sum[:]),
		cache:      cache,
		cacheKey:   fmt.Sprintf("ttlock:token:%s:%s", cfg.ClientID, cfg.Username),
		httpClient: httpClient,
		log:        log,
	}
}

// Token возвращает действующий токен из кэша или запрашивает новый
func (p *tokenProvider) Token(ctx context.Context) (string, error) {
	if token := p.cached(ctx); token != nil {
		return token.AccessToken, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token := p.cached(ctx); token != nil {
		return token.AccessToken, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.oauth.PasswordCredentialsToken(ctx, p.username, p.passMD5)
	if err != nil {
		return "", fmt.Errorf("%w: password grant: %v", ErrAuth, err)
	}

	ttl := time.Until(token.Expiry) - tokenSafetyMargin
	if token.Expiry.IsZero() || ttl <= 0 {
		ttl = tokenSafetyMargin
	}
	if err := p.cache.Set(ctx, p.cacheKey, token, ttl); err != nil {
		p.log.Warn("ttlock: failed to cache access token: %v", err)
	}

	p.log.Info("ttlock: obtained new access token, cached for %s", ttl.Round(time.Second))
	return token.AccessToken, nil
}

// Invalidate сбрасывает кэш, когда API отверг токен
func (p *tokenProvider) Invalidate(ctx context.Context) {
	if err := p.cache.Delete(ctx, p.cacheKey); err != nil {
		p.log.Warn("ttlock: failed to drop cached token: %v", err)
	}
}

func (p *tokenProvider) cached(ctx context.Context) *oauth2.Token {
	token, err := p.cache.Get(ctx, p.cacheKey)
	if err != nil {
		p.log.Warn("ttlock: token cache unavailable: %v", err)
		return nil
	}
	if token == nil || token.AccessToken == "" {
		return nil
	}
	return token
}
