// Package store persists build analysis records. The core pipeline never
// touches a store directly; the HTTP layer writes results here after
// analysis completes.
package store

import (
	"context"
	"errors"

	"github.com/crimson-sun/sawmill/internal/model"
)

// ErrNotFound is returned by Get for an unknown build id.
var ErrNotFound = errors.New("store: build not found")

// Store is the build record persistence interface.
type Store interface {
	Put(ctx context.Context, rec model.BuildRecord) error
	Get(ctx context.Context, buildID string) (model.BuildRecord, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
