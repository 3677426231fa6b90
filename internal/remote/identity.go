package remote

import (
	"context"
	"net/http"
	"strings"

	"microfeed/internal/models"
)

func (c *Client) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return models.Session{}, err
	}

	return resp.Session, c.setAuth(resp)
}

// SignUp creates the account under a provisional display name taken from the
// email. The real name arrives with the following UpdateProfile.
func (c *Client) SignUp(ctx context.Context, email, password string) (models.Session, error) {
	displayName := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		displayName = email[:at]
	}

	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}, &resp, false)
	if err != nil {
		return models.Session{}, err
	}

	return resp.Session, c.setAuth(resp)
}

// UpdateProfile publishes the display fields. Observers are not told; the
// caller updates its own session.
func (c *Client) UpdateProfile(ctx context.Context, displayName, photoURL string) error {
	var session models.Session
	err := c.doJSON(ctx, http.MethodPut, "/api/me/profile", models.UpdateProfileRequest{
		DisplayName: displayName,
		PhotoURL:    photoURL,
	}, &session, true)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return nil
}

// SignOut revokes the refresh token on the server and forgets the local
// credentials even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	var err error
	if c.accessToken() != "" {
		err = c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
	}

	c.clearAuth()
	c.notify(models.Session{})
	return err
}

func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/password-reset",
		models.PasswordResetRequest{Email: email}, nil, false)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/password-reset/confirm",
		models.PasswordResetConfirmRequest{Token: token, NewPassword: newPassword}, nil, false)
}

// OnAuthStateChanged registers fn and calls it right away when a session is
// already present.
func (c *Client) OnAuthStateChanged(fn func(models.Session)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.order = append(c.order, id)
	current := c.session
	c.mu.Unlock()

	if !current.Empty() {
		fn(current)
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if _, ok := c.observers[id]; !ok {
			return
		}
		delete(c.observers, id)
		for i, v := range c.order {
			if v == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}
