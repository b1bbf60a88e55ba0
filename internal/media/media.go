package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds the S3-compatible endpoint and credentials for the media
// host. PublicBaseURL is the base for returned object URLs; when empty the
// endpoint and bucket are used.
type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// Client uploads local files to the media host and returns durable URLs.
type Client struct {
	api *s3.Client
	cfg Config
	log *zap.SugaredLogger
}

// NewClient builds an S3 client with static credentials. A non-empty
// Endpoint switches to path-style addressing so MinIO works.
func NewClient(ctx context.Context, cfg Config, log *zap.SugaredLogger) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{api: api, cfg: cfg, log: log}, nil
}

// ObjectKey returns a date-partitioned key with a random name, preserving
// the extension of localPath.
func ObjectKey(localPath string) string {
	d := time.Now()
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("media/%d/%d/%d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// ContentType guesses the MIME type of localPath from its extension.
func ContentType(localPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Upload puts the file at localPath into the bucket and returns its URL.
// The local temporary file is removed after any outcome, success or failure.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			c.log.Warnw("failed to remove temporary upload file", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := ObjectKey(localPath)
	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(localPath)),
	})
	if err != nil {
		c.log.Errorw("media upload failed", "key", key, "error", err)
		return "", err
	}

	return c.objectURL(key), nil
}

func (c *Client) objectURL(key string) string {
	base := strings.TrimRight(c.cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Bucket)
	}
	return base + "/" + key
}
