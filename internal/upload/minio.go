package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioProvider uploads reports to MinIO/S3-compatible storage.
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioProvider creates an unconfigured MinioProvider.
func NewMinioProvider() *MinioProvider {
	return &MinioProvider{}
}

// Name returns the provider name.
func (m *MinioProvider) Name() string {
	return "minio"
}

// ConfigFromEnv reads the MinIO settings from BENCHDECK_S3_* variables.
func ConfigFromEnv() map[string]any {
	return map[string]any{
		"endpoint":   os.Getenv("BENCHDECK_S3_ENDPOINT"),
		"access_key": os.Getenv("BENCHDECK_S3_ACCESS_KEY"),
		"secret_key": os.Getenv("BENCHDECK_S3_SECRET_KEY"),
		"bucket":     os.Getenv("BENCHDECK_S3_BUCKET"),
		"secure":     os.Getenv("BENCHDECK_S3_SECURE"),
		"region":     os.Getenv("BENCHDECK_S3_REGION"),
		"prefix":     os.Getenv("BENCHDECK_S3_PREFIX"),
	}
}

// Configure sets up the MinIO client with the given configuration.
func (m *MinioProvider) Configure(config map[string]any) error {
	endpoint, ok := getString(config, "endpoint")
	if !ok {
		return fmt.Errorf("minio: endpoint is required")
	}
	accessKey, ok := getString(config, "access_key")
	if !ok {
		return fmt.Errorf("minio: access_key is required")
	}
	secretKey, ok := getString(config, "secret_key")
	if !ok {
		return fmt.Errorf("minio: secret_key is required")
	}
	bucket, ok := getString(config, "bucket")
	if !ok {
		return fmt.Errorf("minio: bucket is required")
	}

	secure := getBool(config, "secure", true)
	region := getStringDefault(config, "region", "us-east-1")
	prefix := getStringDefault(config, "prefix", "")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return fmt.Errorf("minio: failed to create client: %w", err)
	}

	m.client = client
	m.bucket = bucket
	m.prefix = prefix
	return nil
}

// Upload streams content from reader to the bucket.
func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, remotePath string) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}

	objectName := remotePath
	if m.prefix != "" {
		objectName = path.Join(m.prefix, remotePath)
	}

	// -1 size lets the client stream without knowing the length.
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, -1, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("minio: failed to upload to %s: %w", objectName, err)
	}
	return nil
}

func getString(config map[string]any, key string) (string, bool) {
	if val, ok := config[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str, true
		}
	}
	return "", false
}

func getStringDefault(config map[string]any, key, defaultValue string) string {
	if val, ok := getString(config, key); ok {
		return val
	}
	return defaultValue
}

func getBool(config map[string]any, key string, defaultValue bool) bool {
	if val, ok := config[key]; ok {
		switch v := val.(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
