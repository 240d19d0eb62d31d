package erp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/negobi/negobi-gateway/pkg/logger"
)

// refreshMargin is how long before expiry a token is considered stale.
const refreshMargin = 30 * time.Second

// defaultTokenTTL is assumed when the upstream token carries no exp claim.
const defaultTokenTTL = 15 * time.Minute

// TokenManager logs in against the upstream auth endpoint and caches the
// bearer token until shortly before its JWT expiry.
type TokenManager struct {
	http     *resty.Client
	email    string
	password string
	apiKey   string
	logger   *logger.Logger

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenManager creates a token manager for the given upstream credentials.
func NewTokenManager(baseURL, email, password, apiKey string, timeout time.Duration, log *logger.Logger) *TokenManager {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &TokenManager{
		http:     client,
		email:    email,
		password: password,
		apiKey:   apiKey,
		logger:   log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	APIKey   string `json:"api_key,omitempty"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Token returns a valid bearer token, logging in again when the cached one
// is missing or about to expire. Safe for concurrent use.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && time.Now().Before(m.expiry.Add(-refreshMargin)) {
		return m.token, nil
	}
	if err := m.login(ctx); err != nil {
		return "", err
	}
	return m.token, nil
}

// Invalidate drops the cached token, forcing a login on the next request.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiry = time.Time{}
}

func (m *TokenManager) login(ctx context.Context) error {
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(loginRequest{Email: m.email, Password: m.password, APIKey: m.apiKey}).
		Post("/auth/login")
	if err != nil {
		return fmt.Errorf("erp: login request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("erp: login rejected with status %d", resp.StatusCode())
	}

	login, err := DecodeOne[loginResponse](resp.Body())
	if err != nil {
		return fmt.Errorf("erp: login response: %w", err)
	}
	token := login.Token
	if token == "" {
		token = login.AccessToken
	}
	if token == "" {
		return fmt.Errorf("erp: login response contained no token")
	}

	m.token = token
	m.expiry = tokenExpiry(token)

	m.logger.Debug().
		Time("expiry", m.expiry).
		Msg("upstream session refreshed")
	return nil
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// gateway only schedules refreshes with it, verification is the upstream's job.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Now().Add(defaultTokenTTL)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(defaultTokenTTL)
	}
	return exp.Time
}
