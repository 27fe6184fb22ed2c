package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/merijnkok959595/app.screentimejourney-sub000/internal/db"
)

// Querier is the subset of pgxpool.Pool used by the store.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads subscribers from the subscriber table.
type Store struct {
	q        Querier
	pageSize int
	logger   *slog.Logger
}

// NewStore creates a store that scans in pages of pageSize items.
func NewStore(q Querier, pageSize int, logger *slog.Logger) *Store {
	if pageSize < 1 {
		pageSize = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{q: q, pageSize: pageSize, logger: logger}
}

// Scan reads the whole table page by page and returns it as one snapshot.
// Items that fail to decode are logged and left out.
func (s *Store) Scan(ctx context.Context) (*Snapshot, error) {
	var (
		subs  []Subscriber
		after string
		pages int
	)
	for {
		page, last, err := s.scanPage(ctx, after)
		if err != nil {
			return nil, err
		}
		pages++
		subs = append(subs, page.items...)
		if page.read < s.pageSize {
			break
		}
		after = last
	}
	s.logger.Info("Subscriber snapshot loaded", "subscribers", len(subs), "pages", pages)
	return NewSnapshot(subs, time.Now().UTC()), nil
}

type scannedPage struct {
	items []Subscriber
	read  int
}

func (s *Store) scanPage(ctx context.Context, after string) (scannedPage, string, error) {
	rows, err := s.q.Query(ctx, db.StmtScanSubscribers, after, s.pageSize)
	if err != nil {
		return scannedPage{}, "", fmt.Errorf("scan subscribers: %w", err)
	}
	defer rows.Close()

	var (
		page scannedPage
		last string
	)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return scannedPage{}, "", fmt.Errorf("scan subscriber row: %w", err)
		}
		page.read++
		last = id

		sub, err := Decode(id, raw)
		if err != nil {
			s.logger.Warn("Skipping undecodable subscriber", "customer_id", id, "error", err)
			continue
		}
		page.items = append(page.items, sub)
	}
	return page, last, rows.Err()
}

// Decode parses a JSON item. The row key fills in customer_id when the item
// does not carry one.
func Decode(customerID string, raw []byte) (Subscriber, error) {
	var item map[string]any
	if err := json.Unmarshal(raw, &item); err != nil {
		return Subscriber{}, fmt.Errorf("decode item: %w", err)
	}
	sub := Parse(item)
	if sub.CustomerID == "" {
		sub.CustomerID = customerID
	}
	return sub, nil
}
