// Package upload ships finished report files to remote storage.
package upload

import (
	"context"
	"io"
)

// Provider is a storage backend for report uploads.
type Provider interface {
	// Upload streams content from reader to the remote path.
	Upload(ctx context.Context, reader io.Reader, remotePath string) error

	// Configure sets up the provider with the given configuration.
	Configure(config map[string]any) error

	// Name returns the provider name.
	Name() string
}
