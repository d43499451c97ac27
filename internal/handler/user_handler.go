package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/unimart/internal/middleware"
	"github.com/hitoshi/unimart/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	UpdateProfile(ctx context.Context, userID string, patch model.ProfilePatch) (*model.User, error)
}

// UserHandler はプロフィール管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// updateProfileRequest はプロフィール更新リクエストのボディ。nilフィールドは変更しない。
type updateProfileRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Instagram *string `json:"instagram"`
}

// UpdateProfile は現在のユーザーのプロフィールを部分更新する。
// PATCH /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidRequestError())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, model.ProfilePatch{
		Name:      req.Name,
		Phone:     req.Phone,
		Instagram: req.Instagram,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}
