package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-training/pkg/kvstore"
)

// SessionKey is the key the HTTP client uses to cache the current token
// bundle in the local store.
const SessionKey = "auth:session"

// HTTPConfig configures the hosted backend client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	TokenCache kvstore.Store
	HTTPClient *http.Client
}

// HTTPClient talks to the hosted auth + row-query REST endpoints. Tokens are
// cached in the provided store so sessions survive restarts.
type HTTPClient struct {
	baseURL string
	apiKey  string
	cache   kvstore.Store
	client  *http.Client

	mu      sync.RWMutex
	session *Session
}

// NewHTTPClient builds a client for the hosted backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		cache:   cfg.TokenCache,
		client:  httpClient,
	}, nil
}

// Session restores the cached session, refreshing it when the access token
// has expired. Returns ErrSessionMissing when nothing is cached.
func (c *HTTPClient) Session(ctx context.Context) (Session, error) {
	session, ok := c.cachedSession(ctx)
	if !ok {
		return Session{}, ErrSessionMissing
	}
	if time.Now().Before(session.ExpiresAt) {
		return session, nil
	}
	return c.Refresh(ctx, session.RefreshToken)
}

// SignIn exchanges credentials for a session.
func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", payload, &session); err != nil {
		return Session{}, err
	}
	c.storeSession(ctx, session)
	return session, nil
}

// SignOut revokes the current session server-side and drops the cached copy.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	c.dropSession(ctx)
	return err
}

// Refresh exchanges a refresh token for a fresh session.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrSessionMissing
	}
	payload := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", payload, &session); err != nil {
		return Session{}, err
	}
	c.storeSession(ctx, session)
	return session, nil
}

// Register creates a new account.
func (c *HTTPClient) Register(ctx context.Context, input RegisterInput) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", input, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UserByID fetches a usuarios row by internal numeric id.
func (c *HTTPClient) UserByID(ctx context.Context, id int) (User, error) {
	return c.queryOne(ctx, "id_usuario", "eq."+strconv.Itoa(id))
}

// UserByAuthID fetches a usuarios row by external auth-identity id.
func (c *HTTPClient) UserByAuthID(ctx context.Context, authID string) (User, error) {
	return c.queryOne(ctx, "id", "eq."+authID)
}

// FindByIdentifier performs an exact-match lookup on an identifier column.
func (c *HTTPClient) FindByIdentifier(ctx context.Context, field, value string) (User, error) {
	return c.queryOne(ctx, field, "eq."+value)
}

// SearchByIdentifier performs a case-insensitive substring lookup.
func (c *HTTPClient) SearchByIdentifier(ctx context.Context, field, fragment string) ([]User, error) {
	return c.queryRows(ctx, field, "ilike.*"+fragment+"*")
}

func (c *HTTPClient) queryOne(ctx context.Context, field, operator string) (User, error) {
	rows, err := c.queryRows(ctx, field, operator)
	if err != nil {
		return User{}, err
	}
	if len(rows) == 0 {
		return User{}, ErrUserNotFound
	}
	return rows[0], nil
}

func (c *HTTPClient) queryRows(ctx context.Context, field, operator string) ([]User, error) {
	path := "/rest/v1/usuarios?select=*&" + url.QueryEscape(field) + "=" + url.QueryEscape(operator)
	var rows []User
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("backend: encode payload: %w", err)
		}
		body = encoded
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if session, ok := c.currentSession(); ok && session.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Code             string `json:"error_code"`
		Message          string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Code = payload.Code
		switch {
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.ErrorDescription != "":
			apiErr.Message = payload.ErrorDescription
		default:
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *HTTPClient) currentSession() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

func (c *HTTPClient) cachedSession(ctx context.Context) (Session, bool) {
	if session, ok := c.currentSession(); ok {
		return session, true
	}
	if c.cache == nil {
		return Session{}, false
	}
	raw, ok, err := c.cache.Get(ctx, SessionKey)
	if err != nil || !ok {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return Session{}, false
	}
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()
	return session, true
}

func (c *HTTPClient) storeSession(ctx context.Context, session Session) {
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	// cache write failures must not fail the auth call
	_ = c.cache.Set(ctx, SessionKey, string(raw))
}

func (c *HTTPClient) dropSession(ctx context.Context) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if c.cache != nil {
		_ = c.cache.Remove(ctx, SessionKey)
	}
}
