package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"microfeed/internal/livequery"
	"microfeed/internal/models"
)

// Subscribe opens the live WebSocket of scope. The connection is dialed
// before returning so that a refused subscription is reported here.
func (c *Client) Subscribe(ctx context.Context, scope models.Scope) (*livequery.Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	conn, err := c.dialLive(ctx, scope)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if refreshErr := c.refresh(ctx); refreshErr == nil {
			conn, err = c.dialLive(ctx, scope)
		}
	}
	if err != nil {
		return nil, err
	}

	return livequery.Start(ctx, scope, func(ctx context.Context, emit func(models.Snapshot)) error {
		defer conn.Close()

		stop := context.AfterFunc(ctx, func() {
			_ = conn.Close()
		})
		defer stop()

		for {
			var snap models.Snapshot
			if err := conn.ReadJSON(&snap); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return fmt.Errorf("живой запрос %s прерван: %w", scope.Key(), err)
			}
			emit(snap)
		}
	}), nil
}

func (c *Client) dialLive(ctx context.Context, scope models.Scope) (*websocket.Conn, error) {
	token := c.accessToken()
	if token == "" {
		return nil, ErrNotSignedIn
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("неверный адрес API: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/live"
	u.RawQuery = url.Values{"scope": {scope.Key()}, "token": {token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusSwitchingProtocols {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
				return nil, decodeAPIError(resp.StatusCode, body)
			}
		}
		return nil, fmt.Errorf("ошибка подключения к %s: %w", u.Path, err)
	}

	return conn, nil
}
