package middlewares

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/jwt"
	"github.com/streamvault/account-service/internal/models"
)

// AccessVerifier extracts and verifies access tokens.
type AccessVerifier interface {
	TokenFromRequest(r *http.Request) (string, error)
	ParseAccess(ctx context.Context, token string) (*jwt.Claims, error)
}

// UserLoader loads the sanitized user attached to authenticated requests.
type UserLoader interface {
	GetViewByID(ctx context.Context, id primitive.ObjectID) (*models.UserView, error)
}

type userCtxKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.UserView) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// UserFromContext returns the authenticated user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (*models.UserView, bool) {
	user, ok := ctx.Value(userCtxKey{}).(*models.UserView)
	return user, ok
}

// AuthMiddleware guards a route group: it extracts the access token from the
// accessToken cookie or the Authorization header, verifies it, loads the
// user it was issued for, and attaches the sanitized user to the request
// context. Missing, invalid, and expired tokens, and tokens whose user no
// longer exists, are all rejected with the same 401 envelope.
func AuthMiddleware(verifier AccessVerifier, users UserLoader, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, err := verifier.TokenFromRequest(r)
			if err != nil {
				httpx.WriteError(w, httpx.UnauthorizedError("unauthorized request"))
				return
			}

			claims, err := verifier.ParseAccess(ctx, token)
			if err != nil {
				log.Infow("access token rejected", "error", err)
				httpx.WriteError(w, httpx.UnauthorizedError("invalid access token"))
				return
			}

			user, err := users.GetViewByID(ctx, claims.UserID)
			if err != nil {
				httpx.WriteError(w, httpx.InternalError("failed to load user"))
				return
			}
			if user == nil {
				// Stale token: the user was deleted after issuance.
				httpx.WriteError(w, httpx.UnauthorizedError("invalid access token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}
