package store

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/observability"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	TTL     time.Duration

	Dir        string // file
	SQLitePath string // sqlite
	Redis      RedisConfig
	Mongo      MongoConfig
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemoryStore(cfg.TTL)
	case BackendFile, "":
		if err := apperrors.ValidatePath(cfg.Dir); err != nil {
			return nil, err
		}
		s, err = NewFileStore(cfg.Dir, cfg.TTL)
	case BackendSQLite:
		if err := apperrors.ValidatePath(cfg.SQLitePath); err != nil {
			return nil, err
		}
		s, err = NewSQLiteStore(cfg.SQLitePath, cfg.TTL)
	case BackendRedis:
		rc := cfg.Redis
		rc.TTL = cfg.TTL
		s, err = NewRedisStore(ctx, rc)
	case BackendMongo:
		mc := cfg.Mongo
		mc.TTL = cfg.TTL
		s, err = NewMongoStore(ctx, mc)
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStoreUnavailable, err, "open %s store", cfg.Backend)
	}
	return Instrument(s, cfg.Backend), nil
}

// Instrument wraps s so every call validates chart IDs and reports to
// the registered store hooks under the given backend name.
func Instrument(s Store, backend string) Store {
	if backend == "" {
		backend = BackendFile
	}
	return &instrumented{inner: s, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

func (s *instrumented) Get(ctx context.Context, id string) (*Chart, error) {
	if err := apperrors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	c, err := s.inner.Get(ctx, id)
	observability.Store().OnGet(ctx, s.backend, err == nil)
	return c, err
}

func (s *instrumented) Put(ctx context.Context, c *Chart) error {
	if c.ID != "" {
		if err := apperrors.ValidateDocumentID(c.ID); err != nil {
			return err
		}
	}
	if err := c.Document.Validate(); err != nil {
		return err
	}
	if err := s.inner.Put(ctx, c); err != nil {
		return err
	}
	size := 0
	if data, err := json.Marshal(c.Document); err == nil {
		size = len(data)
	}
	observability.Store().OnPut(ctx, s.backend, size)
	return nil
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	if err := apperrors.ValidateDocumentID(id); err != nil {
		return err
	}
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	observability.Store().OnDelete(ctx, s.backend)
	return nil
}

func (s *instrumented) List(ctx context.Context) ([]Summary, error) { return s.inner.List(ctx) }
func (s *instrumented) Close() error                                 { return s.inner.Close() }
