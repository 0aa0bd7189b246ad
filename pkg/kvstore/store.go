// Package kvstore provides the durable key/value records backing the console
// session: the host list and the operator identity are stored as two
// independent values.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is a string key/value store. Writes are whole-value and
// last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend string

	// Path is the JSON file used by the file backend. Empty means DefaultPath().
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open constructs the configured backend. An empty backend selects "file".
func Open(opts OpenOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		path := opts.Path
		if strings.TrimSpace(path) == "" {
			p, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path), nil
	case BackendRedis:
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, errors.New("redis backend requires an address")
		}
		var ropts []RedisOption
		if opts.RedisPrefix != "" {
			ropts = append(ropts, WithPrefix(opts.RedisPrefix))
		}
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, ropts...), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
