package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/middlewares"
)

// NewCurrentUserHandler returns an HTTP handler that echoes the
// authenticated user attached to the request context by the auth middleware.
// @Summary Get the current user
// @Description Returns the sanitized user for the presented access token.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Response "Sanitized user"
// @Failure 401 {object} httpx.ErrorBody "Not authenticated"
// @Router /me [get]
func NewCurrentUserHandler(log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, httpx.UnauthorizedError("unauthorized request"))
			return
		}

		httpx.JSON(w, http.StatusOK, user, "Current user fetched successfully")
	}
}
