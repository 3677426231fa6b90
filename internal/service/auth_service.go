package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"microfeed/internal/config"
	"microfeed/internal/models"
	"microfeed/internal/repository"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrWeakPassword       = fmt.Errorf("пароль должен содержать не менее %d символов", MinPasswordLength)
	ErrInvalidToken       = errors.New("недействительный токен")
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, models.Tokens, error)
	Login(ctx context.Context, email, password string) (*models.User, models.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.User, models.Tokens, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	ValidateToken(tokenString string) (*jwt.Token, error)
	GetUserFromToken(tokenString string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	mailer   Mailer
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, mailer Mailer, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		mailer:   mailer,
		cfg:      cfg,
	}
}

// Register creates the account and signs it in.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, models.Tokens, error) {
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, models.Tokens{}, ErrWeakPassword
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	user := &models.User{
		Email:                  req.Email,
		DisplayName:            req.DisplayName,
		PhotoURL:               req.PhotoURL,
		RefreshToken:           refreshToken,
		RefreshTokenExpiryTime: refreshTokenExpiry,
	}

	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, models.Tokens{}, err
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, models.Tokens{}, fmt.Errorf("ошибка генерации access token: %w", err)
	}

	return user, models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, models.Tokens, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrWrongPassword) {
			return nil, models.Tokens{}, ErrInvalidCredentials
		}
		return nil, models.Tokens{}, fmt.Errorf("ошибка аутентификации: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, models.Tokens{}, err
	}

	return user, tokens, nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, models.Tokens, error) {
	user, err := s.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.Tokens{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return nil, models.Tokens{}, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, models.Tokens{}, err
	}

	return user, tokens, nil
}

// Logout revokes the refresh token. Access tokens stay valid until they expire.
func (s *authService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, "", time.Time{}); err != nil {
		return fmt.Errorf("ошибка при выходе: %w", err)
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req.DisplayName, req.PhotoURL); err != nil {
		return nil, err
	}

	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken := uuid.New().String()
	expiry := time.Now().Add(s.cfg.ResetTokenDuration)

	if err := s.userRepo.SetResetToken(ctx, user.UserID, resetToken, expiry); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetToken); err != nil {
		return fmt.Errorf("ошибка отправки письма для сброса пароля: %w", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	if err := s.userRepo.ResetPassword(ctx, resetToken, newPassword); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return err
	}

	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (models.Tokens, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return models.Tokens{}, fmt.Errorf("ошибка генерации access token: %w", err)
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	err = s.userRepo.UpdateRefreshToken(ctx, user.UserID, refreshToken, refreshTokenExpiry)
	if err != nil {
		return models.Tokens{}, fmt.Errorf("ошибка сохранения refresh token: %w", err)
	}

	return models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.UserID,
		"email":  user.Email,
		"exp":    now.Add(s.cfg.AccessTokenDuration).Unix(),
		"iat":    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

func (s *authService) generateRefreshToken() (string, time.Time) {
	return uuid.New().String(), time.Now().Add(s.cfg.RefreshTokenDuration)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}

// GetUserFromToken returns the identity carried by the access token. Only
// UserID and Email are set.
func (s *authService) GetUserFromToken(tokenString string) (*models.User, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: неверный формат claims", ErrInvalidToken)
	}

	userID, _ := claims["userId"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: нет идентификатора пользователя", ErrInvalidToken)
	}

	return &models.User{UserID: userID, Email: email}, nil
}
