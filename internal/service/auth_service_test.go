package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"microfeed/internal/config"
	"microfeed/internal/models"
	"microfeed/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
		ResetTokenDuration:   time.Hour,
		MaxUploadSize:        1024,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешная регистрация", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		req := models.RegisterRequest{Email: "taro@example.com", Password: "secret1", DisplayName: "taro"}
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "taro@example.com" && u.DisplayName == "taro" && u.RefreshToken != ""
		}), "secret1").Return(nil)

		user, tokens, err := svc.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "generated-id", user.UserID)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.Equal(t, user.RefreshToken, tokens.RefreshToken)

		fromToken, err := svc.GetUserFromToken(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "generated-id", fromToken.UserID)
		assert.Equal(t, "taro@example.com", fromToken.Email)
		repo.AssertExpectations(t)
	})

	t.Run("Email уже используется", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		repo.On("CreateUser", ctx, mock.Anything, "secret1").Return(repository.ErrEmailExists)

		_, _, err := svc.Register(ctx, models.RegisterRequest{Email: "taro@example.com", Password: "secret1", DisplayName: "taro"})

		assert.ErrorIs(t, err, repository.ErrEmailExists)
	})

	t.Run("Короткий пароль", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		_, _, err := svc.Register(ctx, models.RegisterRequest{Email: "taro@example.com", Password: "пять5", DisplayName: "taro"})

		assert.ErrorIs(t, err, ErrWeakPassword)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &models.User{UserID: "u1", Email: "taro@example.com", DisplayName: "taro"}

	t.Run("Успешный вход", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		repo.On("VerifyPassword", ctx, "taro@example.com", "secret1").Return(user, nil)
		repo.On("UpdateRefreshToken", ctx, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

		got, tokens, err := svc.Login(ctx, "taro@example.com", "secret1")

		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		repo.AssertExpectations(t)
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		repo.On("VerifyPassword", ctx, "taro@example.com", "wrong12").Return(nil, repository.ErrWrongPassword)

		_, _, err := svc.Login(ctx, "taro@example.com", "wrong12")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Неизвестный email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		repo.On("VerifyPassword", ctx, "nobody@example.com", "secret1").Return(nil, repository.ErrNotFound)

		_, _, err := svc.Login(ctx, "nobody@example.com", "secret1")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, new(MockMailer), testConfig())

	user := &models.User{UserID: "u1", Email: "taro@example.com"}

	repo.On("GetUserByRefreshToken", ctx, "old-refresh").Return(user, nil)
	repo.On("GetUserByRefreshToken", ctx, "revoked").Return(nil, repository.ErrNotFound)
	repo.On("UpdateRefreshToken", ctx, "u1", mock.MatchedBy(func(token string) bool {
		return token != "" && token != "old-refresh"
	}), mock.AnythingOfType("time.Time")).Return(nil).Once()
	repo.On("UpdateRefreshToken", ctx, "u1", "", time.Time{}).Return(nil).Once()

	_, tokens, err := svc.RefreshTokens(ctx, "old-refresh")
	require.NoError(t, err)
	assert.NotEqual(t, "old-refresh", tokens.RefreshToken)

	_, _, err = svc.RefreshTokens(ctx, "revoked")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, "u1"))
	repo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, new(MockMailer), testConfig())

	updated := &models.User{UserID: "u1", DisplayName: "taro", PhotoURL: "http://cdn/avatars/x_me.png"}
	repo.On("UpdateProfile", ctx, "u1", "taro", "http://cdn/avatars/x_me.png").Return(nil)
	repo.On("GetUserByID", ctx, "u1").Return(updated, nil)

	user, err := svc.UpdateProfile(ctx, "u1", models.UpdateProfileRequest{DisplayName: "taro", PhotoURL: "http://cdn/avatars/x_me.png"})

	require.NoError(t, err)
	assert.Equal(t, updated, user)
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("Письмо отправлено", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := NewAuthService(repo, mailer, testConfig())

		var issued string
		repo.On("GetUserByEmail", ctx, "taro@example.com").Return(&models.User{UserID: "u1", Email: "taro@example.com"}, nil)
		repo.On("SetResetToken", ctx, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) { issued = args.String(2) }).
			Return(nil)
		mailer.On("SendPasswordReset", ctx, "taro@example.com", mock.AnythingOfType("string")).Return(nil)

		require.NoError(t, svc.RequestPasswordReset(ctx, "taro@example.com"))
		mailer.AssertCalled(t, "SendPasswordReset", ctx, "taro@example.com", issued)
	})

	t.Run("Неизвестный email возвращается как есть", func(t *testing.T) {
		repo := new(MockUserRepository)
		mailer := new(MockMailer)
		svc := NewAuthService(repo, mailer, testConfig())

		notFound := fmt.Errorf("пользователь с email nobody@example.com не найден: %w", repository.ErrNotFound)
		repo.On("GetUserByEmail", ctx, "nobody@example.com").Return(nil, notFound)

		err := svc.RequestPasswordReset(ctx, "nobody@example.com")

		assert.Equal(t, notFound, err)
		mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Подтверждение с просроченным токеном", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := NewAuthService(repo, new(MockMailer), testConfig())

		repo.On("ResetPassword", ctx, "stale", "newsecret").Return(repository.ErrNotFound)

		err := svc.ResetPassword(ctx, "stale", "newsecret")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Короткий новый пароль", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), new(MockMailer), testConfig())

		assert.ErrorIs(t, svc.ResetPassword(ctx, "token", "12345"), ErrWeakPassword)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), new(MockMailer), testConfig())

	tests := []struct {
		name   string
		secret string
		exp    time.Time
	}{
		{name: "Чужая подпись", secret: "other-secret", exp: time.Now().Add(time.Hour)},
		{name: "Истекший токен", secret: "test-secret", exp: time.Now().Add(-time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"userId": "u1",
				"email":  "taro@example.com",
				"exp":    tt.exp.Unix(),
			})
			signed, err := token.SignedString([]byte(tt.secret))
			require.NoError(t, err)

			_, err = svc.GetUserFromToken(signed)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
