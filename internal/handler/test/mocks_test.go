package test

import (
	"context"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"

	"microfeed/internal/livequery"
	"microfeed/internal/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, models.Tokens, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, models.Tokens{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(models.Tokens), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, models.Tokens, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, models.Tokens{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(models.Tokens), args.Error(2)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, models.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, models.Tokens{}, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(models.Tokens), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	args := m.Called(ctx, resetToken, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*jwt.Token, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Token), args.Error(1)
}

func (m *MockAuthService) GetUserFromToken(token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Document, error) {
	args := m.Called(ctx, authorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockFeedService) CreateComment(ctx context.Context, authorID, postID string, req models.CreateCommentRequest) (*models.Document, error) {
	args := m.Called(ctx, authorID, postID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *MockFeedService) Snapshot(ctx context.Context, scope models.Scope) (models.Snapshot, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(models.Snapshot), args.Error(1)
}

func (m *MockFeedService) Subscribe(ctx context.Context, scope models.Scope) (*livequery.Subscription, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*livequery.Subscription), args.Error(1)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Put(ctx context.Context, namespace, name string, file io.Reader) (string, error) {
	data, _ := io.ReadAll(file)
	args := m.Called(ctx, namespace, name, data)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
