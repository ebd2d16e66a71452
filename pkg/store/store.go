package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/matzehuels/intentgraph/pkg/config"
)

// Store is a key/value blob store. Implementations must be safe for
// concurrent use.
//
// Get reports a missing key as (nil, false, nil); an error means the backend
// itself failed.
type Store interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Open creates the backend selected by cfg. Network backends are pinged
// before Open returns.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	case config.BackendNull:
		return NewNullStore(), nil
	case config.BackendFile:
		return NewFileStore(cfg.File.Dir)
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLite.Path)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case config.BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// entry wraps stored data with its write time for backends that keep a
// document per key.
type entry struct {
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}
