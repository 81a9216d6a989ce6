// Package remote abstracts the storage the sync document lives on. A Store
// holds one JSON blob per path; WebDAV and S3 backends are provided.
package remote

import (
	"context"
	"fmt"

	"github.com/tabdav/tabdav/internal/config"
)

// Store is the remote side of a sync. Download distinguishes "absent" from
// failure: a missing document is a normal cold-start condition, not an
// error.
type Store interface {
	// Download fetches the blob at name. found is false when the remote
	// has no document there.
	Download(ctx context.Context, name string) (data []byte, found bool, err error)

	// Upload writes the blob at name, creating or replacing it.
	Upload(ctx context.Context, name string, data []byte) error

	// Exists reports whether a blob is present at name.
	Exists(ctx context.Context, name string) (bool, error)

	// Mkdir ensures the base location exists. Backends without directories
	// implement it as a no-op.
	Mkdir(ctx context.Context) error

	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error
}

// New builds the Store selected by the configuration.
func New(cfg *config.Config) (Store, error) {
	switch cfg.RemoteBackend {
	case config.BackendWebDAV:
		return NewWebDAVStore(cfg.WebDAVURL, cfg.WebDAVUsername, cfg.WebDAVPassword, cfg.RemoteTimeout), nil
	case config.BackendS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown remote backend: %q", cfg.RemoteBackend)
	}
}
