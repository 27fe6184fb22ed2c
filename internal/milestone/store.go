package milestone

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/attr"
	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/db"
)

// ConfigKey is the configuration store key holding the catalog.
const ConfigKey = "milestones"

// RowQuerier is the subset of pgxpool.Pool used by the store.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store loads the catalog from the configuration store.
type Store struct {
	q RowQuerier
}

// NewStore creates a catalog store.
func NewStore(q RowQuerier) *Store {
	return &Store{q: q}
}

// Load reads and validates the catalog. A missing key, an empty list or any
// invalid entry fails the load.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	var raw []byte
	if err := s.q.QueryRow(ctx, db.StmtSystemConfig, ConfigKey).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(ErrEmptyCatalog, "config key %q not found", ConfigKey)
		}
		return nil, fmt.Errorf("read milestone catalog: %w", err)
	}
	return Decode(raw)
}

// Decode parses the stored JSON value. The value is either the list itself
// or an object carrying the list under "milestones".
func Decode(raw []byte) (*Catalog, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.Wrap(err, "decode milestone catalog")
	}

	var list []any
	switch v := attr.Normalize(value).(type) {
	case []any:
		list = v
	case map[string]any:
		list = attr.List(v, ConfigKey)
	}
	if len(list) == 0 {
		return nil, errors.WithStack(ErrEmptyCatalog)
	}

	items, err := FromItems(list)
	if err != nil {
		return nil, errors.Wrap(err, "decode milestone catalog")
	}
	catalog, err := New(items)
	if err != nil {
		return nil, errors.Wrap(err, "validate milestone catalog")
	}
	return catalog, nil
}
