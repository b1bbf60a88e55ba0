package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/streamvault/account-service/internal/middlewares"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	var ctxID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middlewares.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	handler := middlewares.LoggingMiddleware(log)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

	headerID := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, headerID)
	_, err := uuid.Parse(headerID)
	assert.NoError(t, err)
	assert.Equal(t, headerID, ctxID)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, headerID, fields["request_id"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["response_size"])
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, middlewares.RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
