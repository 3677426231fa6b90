package service

import (
	"context"
	"log"
)

// Mailer delivers password reset tokens to their owners.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

// LogMailer writes the reset token to the server log instead of sending mail.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, email, resetToken string) error {
	log.Printf("Сброс пароля для %s: токен %s", email, resetToken)
	return nil
}
