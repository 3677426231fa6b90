package models

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required"`
	PhotoURL    string `json:"photoUrl" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	PhotoURL    string `json:"photoUrl" validate:"omitempty,url"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type CreatePostRequest struct {
	Text  string `json:"text" validate:"required"`
	Image string `json:"image" validate:"omitempty,url"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// Tokens is the credential pair handed out on sign-in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResponse struct {
	Tokens
	Session Session `json:"session"`
}
