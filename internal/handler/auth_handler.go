package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"microfeed/internal/models"
)

// decodeRequest reads a JSON body into req and validates it. On failure the
// error response is already written.
func (h *Handlers) decodeRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return false
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}

	return true
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Неверные данные"
	}

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "email":
			return "Неверный формат email"
		case "min":
			if fe.Field() == "Password" || fe.Field() == "NewPassword" {
				return "Пароль должен быть не менее 6 символов"
			}
		}
		fields = append(fields, fe.Field())
	}

	return "Неверные данные: " + strings.Join(fields, ", ")
}

func authResponse(user *models.User, tokens models.Tokens) models.AuthResponse {
	return models.AuthResponse{
		Tokens:  tokens,
		Session: models.SessionFromUser(user),
	}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	user, tokens, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, authResponse(user, tokens), http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	user, tokens, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, authResponse(user, tokens), http.StatusOK)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	user, tokens, err := h.AuthService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, authResponse(user, tokens), http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	if err := h.AuthService.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Выход выполнен"}, http.StatusOK)
}

func (h *Handlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Письмо для сброса пароля отправлено"}, http.StatusOK)
}

func (h *Handlers) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetConfirmRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Пароль изменен"}, http.StatusOK)
}
