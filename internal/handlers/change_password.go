package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/middlewares"
)

// PasswordChanger defines the interface that the password-change service
// must implement.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
}

// ChangePasswordRequest represents the JSON body for a password change.
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// Current password
	// required: true
	OldPassword string `json:"oldPassword"`

	// New password
	// required: true
	NewPassword string `json:"newPassword"`
}

// NewChangePasswordHandler returns an HTTP handler for changing the
// authenticated user's password.
// @Summary Change password
// @Description Verifies the old password and stores the new one hashed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param changePasswordRequest body handlers.ChangePasswordRequest true "Password change request"
// @Success 200 {object} httpx.Response "Password changed"
// @Failure 400 {object} httpx.ErrorBody "Missing new password"
// @Failure 401 {object} httpx.ErrorBody "Wrong old password or not authenticated"
// @Router /change-password [post]
func NewChangePasswordHandler(svc PasswordChanger, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, httpx.UnauthorizedError("unauthorized request"))
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, httpx.ValidationError("invalid request body"))
			return
		}

		if err := svc.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
			httpx.WriteError(w, err)
			return
		}

		httpx.JSON(w, http.StatusOK, nil, "Password changed successfully")
	}
}
