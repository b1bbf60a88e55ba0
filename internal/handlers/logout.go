package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/middlewares"
)

// Logouter defines the interface that the logout service must implement.
type Logouter interface {
	Logout(ctx context.Context, userID primitive.ObjectID) error
}

// NewLogoutHandler returns an HTTP handler for logout. It requires the auth
// middleware: the user to revoke is taken from the request context, never
// from the body.
// @Summary User logout
// @Description Clears the stored refresh-token slot and expires both token cookies.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} httpx.Response "Logged out"
// @Failure 401 {object} httpx.ErrorBody "Not authenticated"
// @Router /logout [post]
func NewLogoutHandler(svc Logouter, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middlewares.UserFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, httpx.UnauthorizedError("unauthorized request"))
			return
		}

		if err := svc.Logout(r.Context(), user.ID); err != nil {
			httpx.WriteError(w, err)
			return
		}

		clearTokenCookies(w)
		httpx.JSON(w, http.StatusOK, nil, "User logged out")
	}
}
