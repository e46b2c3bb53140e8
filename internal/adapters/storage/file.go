// internal/adapters/storage/file.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/ammerola/shopcart/internal/core/ports"
)

// FileStore keeps each snapshot in its own file under a directory
type FileStore struct {
	fs     afero.Fs
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// Statically assert that *FileStore implements the SnapshotStore interface.
var _ ports.SnapshotStore = (*FileStore)(nil)

// NewFileStore creates a store rooted at dir on fsys, creating dir if needed
func NewFileStore(fsys afero.Fs, dir string, logger *slog.Logger) (*FileStore, error) {
	if exists, _ := afero.DirExists(fsys, dir); !exists {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
		}
	}

	return &FileStore{
		fs:     fsys,
		dir:    dir,
		logger: logger.With(slog.String("storage", "file")),
	}, nil
}

// NewOsFileStore stores snapshots on the local disk
func NewOsFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir, logger)
}

// NewMemoryStore keeps snapshots in process memory only
func NewMemoryStore(logger *slog.Logger) *FileStore {
	store, _ := NewFileStore(afero.NewMemMapFs(), "/", logger)
	return store
}

// Load reads the snapshot file for key
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	path := s.path(key)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ports.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "snapshot read",
		slog.String("path", path),
		slog.Int("bytes", len(data)))

	return data, nil
}

// Save replaces the snapshot file for key. The new content is written to a
// temporary file first so readers never observe a partial snapshot.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)

	tmp, err := afero.TempFile(s.fs, s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", path, err)
	}

	s.logger.DebugContext(ctx, "snapshot written",
		slog.String("path", path),
		slog.Int("bytes", len(data)))

	return nil
}

// Ping checks that the snapshot directory is still reachable
func (s *FileStore) Ping(context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat snapshot dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, FileName(key))
}

// FileName maps a storage key onto a portable file name. Bytes outside
// [A-Za-z0-9.-] are written as '_' plus two hex digits, so distinct keys never
// share a file.
func FileName(key string) string {
	var b strings.Builder
	b.Grow(len(key) + len(".json"))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	b.WriteString(".json")
	return b.String()
}
