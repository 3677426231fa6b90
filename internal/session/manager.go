package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"microfeed/internal/models"
	"microfeed/internal/uploader"
)

const MinPasswordLength = 6

var ErrSubmissionDisabled = errors.New("форма заполнена не полностью")

// IdentityProvider is the account backend. Its errors reach the caller
// unchanged.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	UpdateProfile(ctx context.Context, displayName, photoURL string) error
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	// OnAuthStateChanged calls fn on every identity change and returns the
	// function that stops the notifications.
	OnAuthStateChanged(fn func(models.Session)) func()
}

// AvatarUploader stores profile pictures.
type AvatarUploader interface {
	Upload(ctx context.Context, ns uploader.Namespace, file models.Attachment) (string, error)
}

type SignUpForm struct {
	Username string
	Email    string
	Password string
	Avatar   *models.Attachment
}

// Manager keeps a Store in step with the identity provider.
type Manager struct {
	store    *Store
	provider IdentityProvider
	uploader AvatarUploader

	mu     sync.Mutex
	unbind func()
}

func NewManager(store *Store, provider IdentityProvider, uploader AvatarUploader) *Manager {
	return &Manager{
		store:    store,
		provider: provider,
		uploader: uploader,
	}
}

func (m *Manager) Store() *Store {
	return m.store
}

// Bind starts mirroring provider identity changes into the store. Calling it
// while bound does nothing.
func (m *Manager) Bind() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unbind != nil {
		return
	}

	m.unbind = m.provider.OnAuthStateChanged(func(s models.Session) {
		if s.Empty() {
			m.store.Logout()
			return
		}
		m.store.Login(s)
	})
}

// Unbind stops the mirroring. Safe to call more than once.
func (m *Manager) Unbind() {
	m.mu.Lock()
	unbind := m.unbind
	m.unbind = nil
	m.mu.Unlock()

	if unbind != nil {
		unbind()
	}
}

func CanSignIn(email, password string) bool {
	return email != "" && utf8.RuneCountInString(password) >= MinPasswordLength
}

func CanSignUp(form SignUpForm) bool {
	return form.Username != "" && CanSignIn(form.Email, form.Password) && form.Avatar != nil
}

// SignIn authenticates. The store is updated by the bound state notifier,
// not here, so a sign-in changes the slot exactly once.
func (m *Manager) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	if !CanSignIn(email, password) {
		return models.Session{}, ErrSubmissionDisabled
	}

	return m.provider.SignIn(ctx, email, password)
}

// SignUp creates the account, uploads the avatar and publishes the profile.
// A failed avatar upload leaves the created account in place.
func (m *Manager) SignUp(ctx context.Context, form SignUpForm) (models.Session, error) {
	if !CanSignUp(form) {
		return models.Session{}, ErrSubmissionDisabled
	}

	session, err := m.provider.SignUp(ctx, form.Email, form.Password)
	if err != nil {
		return models.Session{}, err
	}

	photoURL, err := m.uploader.Upload(ctx, uploader.Avatars, *form.Avatar)
	if err != nil {
		return session, fmt.Errorf("ошибка загрузки аватара: %w", err)
	}

	if err := m.provider.UpdateProfile(ctx, form.Username, photoURL); err != nil {
		return session, err
	}

	m.store.UpdateProfile(form.Username, photoURL)

	session.DisplayName = form.Username
	session.PhotoURL = photoURL
	return session, nil
}

func (m *Manager) SignOut(ctx context.Context) error {
	return m.provider.SignOut(ctx)
}

func (m *Manager) SendPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrSubmissionDisabled
	}
	return m.provider.SendPasswordReset(ctx, email)
}
