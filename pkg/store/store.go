package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/stackflow/pkg/errors"
	"github.com/matzehuels/stackflow/pkg/flowchart"
)

// ErrNotFound is returned when a chart does not exist or has expired.
var ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "chart not found")

// Chart is a stored chart document.
type Chart struct {
	ID        string             `json:"id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Document  flowchart.Document `json:"document" bson:"document"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time          `json:"expires_at,omitzero" bson:"expires_at"`
}

// Expired reports whether the chart has an expiry time in the past.
func (c *Chart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Summary is the listing view of a chart.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Blocks    int       `json:"blocks"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Chart) summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Blocks: len(c.Document.Blocks), UpdatedAt: c.UpdatedAt}
}

// Store is the interface for chart storage backends.
type Store interface {
	// Get returns the chart with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Chart, error)

	// Put creates or replaces a chart. An empty ID is filled with a new
	// one; timestamps are set by the store.
	Put(ctx context.Context, c *Chart) error

	// Delete removes a chart, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns all live charts, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases the backend's resources.
	Close() error
}

// NewID returns a fresh chart ID.
func NewID() string { return uuid.NewString() }

// prepare fills in the ID and timestamps of c before it is written.
func prepare(c *Chart, ttl time.Duration, now time.Time) {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.ExpiresAt = time.Time{}
	if ttl > 0 {
		c.ExpiresAt = now.Add(ttl)
	}
}

func encode(c *Chart) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*Chart, error) {
	var c Chart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return &c, nil
}

func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func notFound(id string) error {
	return fmt.Errorf("chart %s: %w", id, ErrNotFound)
}
