package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"microfeed/internal/models"
)

var (
	ErrNotFound      = errors.New("запись не найдена")
	ErrEmailExists   = errors.New("email уже используется")
	ErrWrongPassword = errors.New("неверный пароль")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, displayName, photoURL string) error
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	SetResetToken(ctx context.Context, userID, resetToken string, expiryTime time.Time) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// DocumentRepository stores posts and their comments and answers the
// ordered queries behind live subscriptions.
type DocumentRepository interface {
	Insert(ctx context.Context, scope models.Scope, doc *models.Document) error
	List(ctx context.Context, scope models.Scope) ([]models.Document, error)
	PostExists(ctx context.Context, postID string) (bool, error)
}

type Repository struct {
	User     UserRepository
	Document DocumentRepository
}

func NewRepository(db *sqlx.DB, liveQueryLimit int) *Repository {
	return &Repository{
		User:     NewUserRepository(db),
		Document: NewDocumentRepository(db, liveQueryLimit),
	}
}
