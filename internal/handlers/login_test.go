package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/handlers"
	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/jwt"
	"github.com/streamvault/account-service/internal/models"
)

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := handlers.NewMockLoginer(ctrl)
	view := &models.UserView{ID: primitive.NewObjectID(), Username: "annlee"}
	svc.EXPECT().
		Login(gomock.Any(), "annlee", "", "S3cret!").
		Return(view, "ACCESS", "REFRESH", nil)

	handler := handlers.NewLoginHandler(svc, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"annlee","password":"S3cret!"}`))
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(t, rec, jwt.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "ACCESS", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)

	refresh := cookieByName(t, rec, jwt.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "REFRESH", refresh.Value)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "User logged in successfully", env.Message)

	var result handlers.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "ACCESS", result.AccessToken)
	assert.Equal(t, "REFRESH", result.RefreshToken)
	require.NotNil(t, result.User)
	assert.Equal(t, "annlee", result.User.Username)
}

func TestLoginHandler_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := handlers.NewLoginHandler(handlers.NewMockLoginer(ctrl), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "invalid request body", env.Message)
}

func TestLoginHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown user", httpx.NotFoundError("user does not exist"), http.StatusNotFound},
		{"bad credentials", httpx.AuthenticationError("invalid user credentials"), http.StatusUnauthorized},
		{"store failure", httpx.InternalError("failed to persist session"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := handlers.NewMockLoginer(ctrl)
			svc.EXPECT().
				Login(gomock.Any(), "annlee", "", "nope").
				Return(nil, "", "", tt.err)

			handler := handlers.NewLoginHandler(svc, zap.NewNop().Sugar())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
				strings.NewReader(`{"username":"annlee","password":"nope"}`))
			rec := httptest.NewRecorder()

			handler(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}
