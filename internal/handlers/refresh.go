package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/jwt"
)

// Refresher defines the interface that the token-rotation service must
// implement.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// RefreshRequest represents the JSON body for token refresh. The cookie
// takes precedence when both are present.
// swagger:model RefreshRequest
type RefreshRequest struct {
	// Refresh token, for clients that do not use cookies
	RefreshToken string `json:"refreshToken"`
}

// RefreshResult is the data payload of a successful token refresh.
// swagger:model RefreshResult
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewRefreshHandler returns an HTTP handler that rotates the token pair.
// The refresh token is read from the refreshToken cookie or the JSON body.
// @Summary Refresh the token pair
// @Description Verifies the refresh token against the stored slot and rotates both tokens; the presented refresh token becomes unusable.
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body handlers.RefreshRequest false "Refresh request"
// @Success 200 {object} httpx.Response "New token pair"
// @Failure 401 {object} httpx.ErrorBody "Missing, invalid, expired, or superseded refresh token"
// @Router /refresh-token [post]
func NewRefreshHandler(svc Refresher, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(jwt.RefreshTokenCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			var req RefreshRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
				token = req.RefreshToken
			}
		}

		access, refresh, err := svc.Refresh(r.Context(), token)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		setTokenCookies(w, access, refresh)
		httpx.JSON(w, http.StatusOK, RefreshResult{
			AccessToken:  access,
			RefreshToken: refresh,
		}, "Access token refreshed")
	}
}
