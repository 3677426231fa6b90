package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"microfeed/internal/models"
	"microfeed/internal/repository"
	"microfeed/internal/service"
)

func TestRegisterHandler(t *testing.T) {
	tokens := models.Tokens{AccessToken: "access", RefreshToken: "refresh"}

	t.Run("Успешная регистрация", func(t *testing.T) {
		s := newTestServer(nil)

		req := models.RegisterRequest{Email: "hana@example.com", Password: "secret1", DisplayName: "hana"}
		s.auth.On("Register", mock.Anything, req).Return(&models.User{
			UserID:      "u2",
			Email:       "hana@example.com",
			DisplayName: "hana",
		}, tokens, nil)

		rr := s.do(http.MethodPost, "/api/auth/register", req, "")

		require.Equal(t, http.StatusCreated, rr.Code)

		var response models.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "access", response.AccessToken)
		assert.Equal(t, "refresh", response.RefreshToken)
		assert.Equal(t, models.Session{UID: "u2", DisplayName: "hana"}, response.Session)
	})

	t.Run("Email уже используется", func(t *testing.T) {
		s := newTestServer(nil)

		conflict := fmt.Errorf("пользователь с email taro@example.com уже существует: %w", repository.ErrEmailExists)
		s.auth.On("Register", mock.Anything, mock.Anything).Return(nil, models.Tokens{}, conflict)

		rr := s.do(http.MethodPost, "/api/auth/register", models.RegisterRequest{
			Email: "taro@example.com", Password: "secret1", DisplayName: "taro",
		}, "")

		assertJSONError(t, rr, http.StatusConflict, conflict.Error())
	})

	t.Run("Короткий пароль", func(t *testing.T) {
		s := newTestServer(nil)

		rr := s.do(http.MethodPost, "/api/auth/register", models.RegisterRequest{
			Email: "hana@example.com", Password: "12345", DisplayName: "hana",
		}, "")

		assertJSONError(t, rr, http.StatusBadRequest, "Пароль должен быть не менее 6 символов")
		s.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Неверный email", func(t *testing.T) {
		s := newTestServer(nil)

		rr := s.do(http.MethodPost, "/api/auth/register", models.RegisterRequest{
			Email: "not-an-email", Password: "secret1", DisplayName: "hana",
		}, "")

		assertJSONError(t, rr, http.StatusBadRequest, "Неверный формат email")
	})

	t.Run("Неверный JSON", func(t *testing.T) {
		s := newTestServer(nil)

		rr := s.do(http.MethodPost, "/api/auth/register", []byte("{"), "")

		assertJSONError(t, rr, http.StatusBadRequest, "Неверный формат запроса")
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("Успешный вход", func(t *testing.T) {
		s := newTestServer(nil)

		s.auth.On("Login", mock.Anything, "taro@example.com", "secret1").Return(&models.User{
			UserID:      "u1",
			DisplayName: "taro",
			PhotoURL:    "http://cdn/avatars/k_me.png",
		}, models.Tokens{AccessToken: "access", RefreshToken: "refresh"}, nil)

		rr := s.do(http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "taro@example.com", Password: "secret1"}, "")

		require.Equal(t, http.StatusOK, rr.Code)

		var response models.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "u1", response.Session.UID)
		assert.Equal(t, "http://cdn/avatars/k_me.png", response.Session.PhotoURL)
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		s := newTestServer(nil)

		s.auth.On("Login", mock.Anything, "taro@example.com", "wrong12").Return(nil, models.Tokens{}, service.ErrInvalidCredentials)

		rr := s.do(http.MethodPost, "/api/auth/login", models.LoginRequest{Email: "taro@example.com", Password: "wrong12"}, "")

		assertJSONError(t, rr, http.StatusUnauthorized, "неверный email или пароль")
	})
}

func TestRefreshAndLogoutHandlers(t *testing.T) {
	s := newTestServer(nil)

	s.auth.On("RefreshTokens", mock.Anything, "refresh").Return(&models.User{UserID: "u1"},
		models.Tokens{AccessToken: "access2", RefreshToken: "refresh2"}, nil)
	s.auth.On("RefreshTokens", mock.Anything, "stale").Return(nil, models.Tokens{}, service.ErrInvalidToken)
	s.auth.On("Logout", mock.Anything, "u1").Return(nil)

	rr := s.do(http.MethodPost, "/api/auth/refresh-token", models.RefreshTokenRequest{RefreshToken: "refresh"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "refresh2")

	rr = s.do(http.MethodPost, "/api/auth/refresh-token", models.RefreshTokenRequest{RefreshToken: "stale"}, "")
	assertJSONError(t, rr, http.StatusUnauthorized, "недействительный токен")

	rr = s.do(http.MethodPost, "/api/auth/logout", nil, validToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodPost, "/api/auth/logout", nil, "")
	assertJSONError(t, rr, http.StatusUnauthorized, "Требуется авторизация")

	s.auth.AssertExpectations(t)
}

func TestPasswordResetHandlers(t *testing.T) {
	s := newTestServer(nil)

	notFound := fmt.Errorf("пользователь с email nobody@example.com не найден: %w", repository.ErrNotFound)
	s.auth.On("RequestPasswordReset", mock.Anything, "taro@example.com").Return(nil)
	s.auth.On("RequestPasswordReset", mock.Anything, "nobody@example.com").Return(notFound)
	s.auth.On("ResetPassword", mock.Anything, "reset-token", "newsecret").Return(nil)

	rr := s.do(http.MethodPost, "/api/auth/password-reset", models.PasswordResetRequest{Email: "taro@example.com"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodPost, "/api/auth/password-reset", models.PasswordResetRequest{Email: "nobody@example.com"}, "")
	assertJSONError(t, rr, http.StatusNotFound, notFound.Error())

	rr = s.do(http.MethodPost, "/api/auth/password-reset/confirm",
		models.PasswordResetConfirmRequest{Token: "reset-token", NewPassword: "newsecret"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	s.auth.AssertExpectations(t)
}

func TestProfileHandlers(t *testing.T) {
	s := newTestServer(nil)

	user := &models.User{UserID: "u1", DisplayName: "taro", PhotoURL: "http://cdn/avatars/k_me.png"}
	req := models.UpdateProfileRequest{DisplayName: "taro", PhotoURL: "http://cdn/avatars/k_me.png"}
	s.auth.On("GetUser", mock.Anything, "u1").Return(user, nil)
	s.auth.On("UpdateProfile", mock.Anything, "u1", req).Return(user, nil)

	rr := s.do(http.MethodGet, "/api/me", nil, validToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"uid":"u1","displayName":"taro","photoUrl":"http://cdn/avatars/k_me.png"}`, rr.Body.String())

	rr = s.do(http.MethodPut, "/api/me/profile", req, validToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(http.MethodPut, "/api/me/profile", models.UpdateProfileRequest{DisplayName: "taro", PhotoURL: "not a url"}, validToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	s.auth.AssertExpectations(t)
}
