package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
)

// ErrNotExist is returned when no object is stored under the requested key.
var ErrNotExist = errors.New("file does not exist")

// Store is a byte-addressable document store keyed by a path-like string.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by config: "local" (default) or "s3".
func New(cfg common.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocal(cfg.Dir)
	case "s3":
		return NewS3(cfg)
	default:
		return nil, fmt.Errorf("storage type must be local or s3, got %q", cfg.Type)
	}
}
