package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/models"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, email, password string) (*models.UserView, string, string, error)
}

// LoginRequest represents the JSON body for user login. Either username or
// email must be present.
// swagger:model LoginRequest
type LoginRequest struct {
	// Username
	// example: annlee
	Username string `json:"username"`

	// Email
	// example: ann@x.com
	Email string `json:"email"`

	// Password
	// required: true
	// example: S3cret!
	Password string `json:"password"`
}

// LoginResult is the data payload of a successful login.
// swagger:model LoginResult
type LoginResult struct {
	User         *models.UserView `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// NewLoginHandler returns an HTTP handler for user login. On success it sets
// the accessToken and refreshToken cookies and returns the sanitized user
// plus both tokens in the body.
// @Summary User login
// @Description Authenticate by username or email, set token cookies, and return the sanitized user with both tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} httpx.Response "Sanitized user and token pair"
// @Failure 400 {object} httpx.ErrorBody "Both identifiers missing or malformed body"
// @Failure 401 {object} httpx.ErrorBody "Wrong password"
// @Failure 404 {object} httpx.ErrorBody "No matching user"
// @Router /login [post]
func NewLoginHandler(svc Loginer, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, httpx.ValidationError("invalid request body"))
			return
		}

		view, access, refresh, err := svc.Login(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		setTokenCookies(w, access, refresh)
		httpx.JSON(w, http.StatusOK, LoginResult{
			User:         view,
			AccessToken:  access,
			RefreshToken: refresh,
		}, "User logged in successfully")
	}
}
