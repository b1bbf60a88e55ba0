package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamvault/account-service/internal/httpx"
)

func TestJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.JSON(rec, http.StatusCreated, map[string]string{"username": "annlee"}, "User registered successfully")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.EqualValues(t, http.StatusCreated, got["statusCode"])
	assert.Equal(t, "User registered successfully", got["message"])
	assert.Equal(t, true, got["success"])
	assert.Equal(t, map[string]interface{}{"username": "annlee"}, got["data"])
}

func TestJSON_NilData(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.JSON(rec, http.StatusOK, nil, "User logged out")

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Nil(t, got["data"])
	assert.Equal(t, true, got["success"])
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err      *httpx.Error
		wantCode int
	}{
		{httpx.ValidationError("all fields are required"), http.StatusBadRequest},
		{httpx.ConflictError("duplicate"), http.StatusConflict},
		{httpx.AuthenticationError("invalid user credentials"), http.StatusUnauthorized},
		{httpx.UnauthorizedError("unauthorized request"), http.StatusUnauthorized},
		{httpx.NotFoundError("user does not exist"), http.StatusNotFound},
		{httpx.UploadError("avatar upload failed"), http.StatusBadRequest},
		{httpx.InternalError("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d %s", tt.wantCode, tt.err.Message), func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.StatusCode)
			assert.Equal(t, tt.err.Message, tt.err.Error())
		})
	}
}

func TestWriteError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, httpx.ValidationError("all fields are required", "fullName is empty"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.EqualValues(t, http.StatusBadRequest, got["statusCode"])
	assert.Equal(t, "all fields are required", got["message"])
	assert.Equal(t, false, got["success"])
	assert.Nil(t, got["data"])
	assert.Equal(t, []interface{}{"fullName is empty"}, got["errors"])
}

func TestWriteError_WrappedAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("handler: %w", httpx.NotFoundError("user does not exist"))
	httpx.WriteError(rec, wrapped)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, errors.New("connection refused: 10.0.0.3:27017"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	// Raw driver messages never reach clients.
	assert.Equal(t, "Internal server error", got["message"])
	assert.Equal(t, []interface{}{}, got["errors"])
}
