package media_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/streamvault/account-service/internal/media"
)

func TestObjectKey(t *testing.T) {
	key := media.ObjectKey("/tmp/upload-123.PNG")

	d := time.Now()
	wantPrefix := fmt.Sprintf("media/%d/%d/%d/", d.Year(), d.Month(), d.Day())
	assert.True(t, strings.HasPrefix(key, wantPrefix), "key %q should start with %q", key, wantPrefix)
	assert.True(t, strings.HasSuffix(key, ".png"), "extension should be lowercased")

	// Keys are random even for the same source path.
	assert.NotEqual(t, key, media.ObjectKey("/tmp/upload-123.PNG"))
}

func TestObjectKey_NoExtension(t *testing.T) {
	key := media.ObjectKey("/tmp/upload-456")
	assert.False(t, strings.Contains(key[strings.LastIndex(key, "/"):], "."))
}

func TestContentType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/a.png", "image/png"},
		{"/tmp/b.jpeg", "image/jpeg"},
		{"/tmp/noext", "application/octet-stream"},
		{"/tmp/c.unknownext", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, media.ContentType(tt.path))
		})
	}
}
