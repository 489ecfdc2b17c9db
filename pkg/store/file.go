package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const fileExt = ".json.zst"

// FileStore keeps each chart as a zstd-compressed JSON file. Files are
// spread over subdirectories named after the first two hex digits of the
// hashed chart ID.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	ttl    time.Duration
	now    func() time.Time
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger *log.Logger
}

// NewFileStore creates a file store in dir, creating it if needed.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now, enc: enc, dec: dec, logger: log.Default()}, nil
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *FileStore) path(id string) string {
	h := Hash([]byte(id))
	return filepath.Join(s.dir, h[:2], h[2:]+fileExt)
}

func (s *FileStore) read(path string) (*Chart, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return decode(data)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Chart, error) {
	s.mu.RLock()
	path := s.path(id)
	c, err := s.read(path)
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", id, err)
	}
	if c.Expired(s.now()) {
		return s.expire(id, path)
	}
	return c, nil
}

// expire removes an expired chart file unless a Put replaced it after the
// read lock was released, in which case the fresh chart is returned.
func (s *FileStore) expire(id, path string) (*Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", id, err)
	}
	if !c.Expired(s.now()) {
		return c, nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("remove expired chart failed", "id", id, "err", err)
	}
	return nil, notFound(id)
}

func (s *FileStore) Put(ctx context.Context, c *Chart) error {
	prepare(c, s.ttl, s.now())
	data, err := encode(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(c.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, s.enc.EncodeAll(data, nil), 0644); err != nil {
		return fmt.Errorf("write chart file: %w", err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(id)
	}
	return err
}

// List reads every chart file. Unreadable files are logged and skipped;
// expired ones are removed.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []Summary
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, fileExt) {
			return ctx.Err()
		}
		c, err := s.read(path)
		if err != nil {
			s.logger.Warn("skipping unreadable chart", "path", path, "err", err)
			return nil
		}
		if c.Expired(now) {
			_ = os.Remove(path)
			return nil
		}
		out = append(out, c.summary())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSummaries(out)
	return out, nil
}

// Close releases the zstd encoder and decoder.
func (s *FileStore) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

var _ Store = (*FileStore)(nil)
