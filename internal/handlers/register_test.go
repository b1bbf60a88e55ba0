package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/streamvault/account-service/internal/handlers"
	"github.com/streamvault/account-service/internal/httpx"
	"github.com/streamvault/account-service/internal/models"
	"github.com/streamvault/account-service/internal/services"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func newRegisterForm(t *testing.T, withAvatar, withCover bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := map[string]string{
		"fullName": "Ann Lee",
		"email":    "ann@x.com",
		"username": "annlee",
		"password": "S3cret!",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withAvatar {
		fw, err := mw.CreateFormFile("avatar", "avatar.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}
	if withCover {
		fw, err := mw.CreateFormFile("coverImage", "cover.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake jpg bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestRegisterHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := handlers.NewMockRegisterer(ctrl)
	tmpDir := t.TempDir()

	svc.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in services.RegisterInput) (*models.UserView, error) {
			assert.Equal(t, "Ann Lee", in.FullName)
			assert.Equal(t, "ann@x.com", in.Email)
			assert.Equal(t, "annlee", in.Username)
			assert.Equal(t, "S3cret!", in.Password)
			// Both files were spooled into the temp dir.
			assert.True(t, strings.HasPrefix(in.AvatarPath, tmpDir))
			assert.True(t, strings.HasPrefix(in.CoverImagePath, tmpDir))
			return &models.UserView{ID: primitive.NewObjectID(), Username: "annlee"}, nil
		})

	handler := handlers.NewRegisterHandler(svc, tmpDir, zap.NewNop().Sugar())

	body, contentType := newRegisterForm(t, true, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "User registered successfully", env.Message)

	// The spooled files are gone whatever the outcome.
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegisterHandler_OptionalCoverMayBeAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := handlers.NewMockRegisterer(ctrl)
	tmpDir := t.TempDir()

	svc.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in services.RegisterInput) (*models.UserView, error) {
			assert.NotEmpty(t, in.AvatarPath)
			assert.Empty(t, in.CoverImagePath)
			return &models.UserView{Username: "annlee"}, nil
		})

	handler := handlers.NewRegisterHandler(svc, tmpDir, zap.NewNop().Sugar())

	body, contentType := newRegisterForm(t, true, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRegisterHandler_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := handlers.NewMockRegisterer(ctrl)
	svc.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, httpx.ConflictError("user with email or username already exists"))

	handler := handlers.NewRegisterHandler(svc, t.TempDir(), zap.NewNop().Sugar())

	body, contentType := newRegisterForm(t, true, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "user with email or username already exists", env.Message)
	assert.NotNil(t, env.Errors)
}

func TestRegisterHandler_InvalidMultipart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := handlers.NewRegisterHandler(handlers.NewMockRegisterer(ctrl), t.TempDir(), zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=broken")
	rec := httptest.NewRecorder()

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}
