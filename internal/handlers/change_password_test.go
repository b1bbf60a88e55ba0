package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/handlers"
	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/middlewares"
	"github.com/streamvault/account-service/internal/models"
)

func TestChangePasswordHandler(t *testing.T) {
	userID := primitive.NewObjectID()

	authed := func(req *http.Request) *http.Request {
		ctx := middlewares.WithUser(req.Context(), &models.UserView{ID: userID})
		return req.WithContext(ctx)
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := handlers.NewMockPasswordChanger(ctrl)
		svc.EXPECT().ChangePassword(gomock.Any(), userID, "old", "new").Return(nil)

		handler := handlers.NewChangePasswordHandler(svc, zap.NewNop().Sugar())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
			strings.NewReader(`{"oldPassword":"old","newPassword":"new"}`))
		rec := httptest.NewRecorder()

		handler(rec, authed(req))

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)
		assert.Equal(t, "Password changed successfully", env.Message)
	})

	t.Run("no authenticated user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handler := handlers.NewChangePasswordHandler(handlers.NewMockPasswordChanger(ctrl), zap.NewNop().Sugar())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
			strings.NewReader(`{"oldPassword":"old","newPassword":"new"}`))
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		handler := handlers.NewChangePasswordHandler(handlers.NewMockPasswordChanger(ctrl), zap.NewNop().Sugar())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", strings.NewReader("{broken"))
		rec := httptest.NewRecorder()

		handler(rec, authed(req))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong old password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := handlers.NewMockPasswordChanger(ctrl)
		svc.EXPECT().
			ChangePassword(gomock.Any(), userID, "wrong", "new").
			Return(httpx.AuthenticationError("invalid old password"))

		handler := handlers.NewChangePasswordHandler(svc, zap.NewNop().Sugar())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
			strings.NewReader(`{"oldPassword":"wrong","newPassword":"new"}`))
		rec := httptest.NewRecorder()

		handler(rec, authed(req))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "invalid old password", env.Message)
	})
}
