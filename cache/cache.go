// Package cache persists mapped method tables so the mapping step runs at
// most once per method.
//
// Each method is stored as one columnar artifact in a cache directory,
// under a filename derived deterministically from the method identifier.
// There is no TTL and no content-based invalidation: a cached artifact is
// served until Clear removes it, even if the mapping table it was built
// from has since changed. That staleness is a deliberate simplicity
// trade-off; regeneration after Clear is the only way to pick up a
// mapping update.
//
// Two processes racing to store the same method converge on equivalent
// artifacts because generation is deterministic, so last-write-wins
// without cross-process locking.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lcacommons/lciafmt/artifact"
	"github.com/lcacommons/lciafmt/format"
	"github.com/lcacommons/lciafmt/internal/hash"
	"github.com/lcacommons/lciafmt/internal/options"
	"github.com/lcacommons/lciafmt/table"
)

// artifactExt is the filename extension of cached method artifacts.
const artifactExt = ".lcm"

// Cache stores and retrieves mapped method tables.
//
// The Cache owns its directory: callers never write artifacts directly.
// All methods are safe for concurrent use within one process.
type Cache struct {
	dir         string
	compression format.CompressionType
	logger      *slog.Logger

	memo sync.Map // method ID -> *memoEntry
}

type memoEntry struct {
	once  sync.Once
	table *table.Table
	err   error
}

// Option is a functional option for configuring a Cache.
type Option = options.Option[*Cache]

// WithDir sets the cache directory. Defaults to DefaultDir().
func WithDir(dir string) Option {
	return options.NoError(func(c *Cache) {
		c.dir = dir
	})
}

// WithCompression selects the artifact compression codec.
func WithCompression(ct format.CompressionType) Option {
	return options.NoError(func(c *Cache) {
		c.compression = ct
	})
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Cache) {
		c.logger = logger
	})
}

// DefaultDir returns the process-wide default cache directory.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}

	return filepath.Join(base, "lciafmt")
}

// New creates a Cache.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:         DefaultDir(),
		compression: artifact.DefaultCompression,
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

// path derives the deterministic artifact location for a method ID.
// Slashes in the identifier become category subdirectories of the cache
// dir. The sanitized identifier keeps filenames readable; the hash
// suffix keeps distinct identifiers distinct after sanitization.
func (c *Cache) path(methodID string) string {
	parts := strings.Split(methodID, "/")
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, c.dir)
	for _, p := range parts[:len(parts)-1] {
		if p != "" {
			segments = append(segments, sanitize(p))
		}
	}

	stem := parts[len(parts)-1]
	name := fmt.Sprintf("%s_%016x%s", sanitize(stem), hash.ID(methodID), artifactExt)
	segments = append(segments, name)

	return filepath.Join(segments...)
}

// Store persists a table under the method ID, overwriting any prior
// artifact for the same identifier.
func (c *Cache) Store(methodID string, t *table.Table) error {
	if err := c.write(methodID, t); err != nil {
		return err
	}

	// A direct Store supersedes whatever the memo holds for this ID.
	c.memo.Delete(methodID)

	return nil
}

func (c *Cache) write(methodID string, t *table.Table) error {
	data, err := artifact.Encode(t, artifact.WithCompression(c.compression))
	if err != nil {
		return fmt.Errorf("encode method %q: %w", methodID, err)
	}

	path := c.path(methodID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store method %q: %w", methodID, err)
	}

	c.logger.Debug("stored method artifact",
		slog.String("method", methodID),
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("bytes", len(data)),
	)

	return nil
}

// Read retrieves the table stored under the method ID.
//
// Absence is an expected outcome, reported through the bool: callers
// branch on it to decide whether to regenerate. The error is reserved
// for structural problems (unreadable file, corrupt artifact).
func (c *Cache) Read(methodID string) (*table.Table, bool, error) {
	data, err := os.ReadFile(c.path(methodID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read method %q: %w", methodID, err)
	}

	t, err := artifact.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode method %q: %w", methodID, err)
	}

	return t, true, nil
}

// Clear removes all cached artifacts for all methods and resets the
// in-process memoization, forcing full regeneration on the next request.
// Clearing a cache that does not exist is a no-op.
func (c *Cache) Clear() error {
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), artifactExt) {
			return nil
		}

		return os.Remove(path)
	})
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	c.memo.Range(func(key, _ any) bool {
		c.memo.Delete(key)
		return true
	})

	c.logger.Info("cache cleared", slog.String("dir", c.dir))

	return nil
}

// GetOrCompute returns the cached table for the method ID, computing and
// storing it on a miss.
//
// The compute function runs at most once per identifier per process
// lifetime, even under concurrent callers; across processes the durable
// artifact provides reuse. A compute error is memoized like a result so
// the at-most-once guarantee holds either way.
func (c *Cache) GetOrCompute(methodID string, compute func() (*table.Table, error)) (*table.Table, error) {
	v, _ := c.memo.LoadOrStore(methodID, &memoEntry{})
	entry := v.(*memoEntry)

	entry.once.Do(func() {
		t, ok, err := c.Read(methodID)
		if err != nil {
			// A corrupt artifact is not fatal: regenerate over it.
			c.logger.Warn("discarding unreadable cached artifact",
				slog.String("method", methodID),
				slog.String("error", err.Error()),
			)
		}
		if ok && err == nil {
			entry.table = t
			return
		}

		c.logger.Info("generating method", slog.String("method", methodID))
		t, err = compute()
		if err != nil {
			entry.err = err
			return
		}
		if err := c.write(methodID, t); err != nil {
			entry.err = err
			return
		}
		entry.table = t
	})

	return entry.table, entry.err
}
