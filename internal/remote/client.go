package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"microfeed/internal/config"
	"microfeed/internal/models"
)

var ErrNotSignedIn = errors.New("вход не выполнен")

// APIError is a non-2xx answer of the API. Message is the server's text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the feed API over HTTP and WebSocket. It implements the
// identity provider, live source, inserter and object store of the client
// application.
type Client struct {
	baseURL   string
	tokenFile string
	http      *http.Client

	mu        sync.Mutex
	tokens    models.Tokens
	session   models.Session
	nextID    int
	observers map[int]func(models.Session)
	order     []int
}

func NewClient(cfg *config.Client) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.APIURL, "/"),
		tokenFile: cfg.TokenFile,
		http:      &http.Client{Timeout: 30 * time.Second},
		observers: make(map[int]func(models.Session)),
	}
}

// Restore loads the saved tokens and fetches the profile they belong to.
// Without saved tokens it does nothing.
func (c *Client) Restore(ctx context.Context) error {
	tokens, err := c.loadTokens()
	if err != nil {
		return err
	}
	if tokens.AccessToken == "" {
		return nil
	}

	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()

	var session models.Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &session, true); err != nil {
		c.clearAuth()
		return err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.notify(session)
	return nil
}

func (c *Client) Current() models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.AccessToken
}

// setAuth stores a fresh sign-in and tells the observers before returning.
func (c *Client) setAuth(resp models.AuthResponse) error {
	c.mu.Lock()
	c.tokens = resp.Tokens
	c.session = resp.Session
	c.mu.Unlock()

	err := c.saveTokens(resp.Tokens)
	c.notify(resp.Session)
	return err
}

func (c *Client) clearAuth() {
	c.mu.Lock()
	c.tokens = models.Tokens{}
	c.session = models.Session{}
	c.mu.Unlock()

	if c.tokenFile != "" {
		_ = os.Remove(c.tokenFile)
	}
}

func (c *Client) notify(s models.Session) {
	c.mu.Lock()
	fns := make([]func(models.Session), 0, len(c.order))
	for _, id := range c.order {
		fns = append(fns, c.observers[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// refresh trades the refresh token for a new pair. The session keeps its
// identity, so observers are not told.
func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.tokens.RefreshToken
	c.mu.Unlock()

	if refreshToken == "" {
		return ErrNotSignedIn
	}

	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh-token",
		models.RefreshTokenRequest{RefreshToken: refreshToken}, &resp, false)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tokens = resp.Tokens
	c.session = resp.Session
	c.mu.Unlock()

	return c.saveTokens(resp.Tokens)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}, auth bool) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
	}
	return c.do(ctx, method, path, data, "application/json", result, auth)
}

// do sends one request. An authorized request answered with 401 is retried
// once after a token refresh.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, result interface{}, auth bool) error {
	err := c.send(ctx, method, path, body, contentType, result, auth)

	var apiErr *APIError
	if auth && errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			return err
		}
		return c.send(ctx, method, path, body, contentType, result, auth)
	}

	return err
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, contentType string, result interface{}, auth bool) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		token := c.accessToken()
		if token == "" {
			return ErrNotSignedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: status, Message: payload.Error}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: message}
}

func (c *Client) loadTokens() (models.Tokens, error) {
	var tokens models.Tokens
	if c.tokenFile == "" {
		return tokens, nil
	}

	data, err := os.ReadFile(c.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return tokens, nil
	}
	if err != nil {
		return tokens, fmt.Errorf("ошибка чтения %s: %w", c.tokenFile, err)
	}

	if err := json.Unmarshal(data, &tokens); err != nil {
		return models.Tokens{}, fmt.Errorf("поврежден файл токенов %s: %w", c.tokenFile, err)
	}
	return tokens, nil
}

func (c *Client) saveTokens(tokens models.Tokens) error {
	if c.tokenFile == "" {
		return nil
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("ошибка сохранения токенов: %w", err)
	}
	return nil
}

func escapePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
