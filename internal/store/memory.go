package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
)

var errNoTable = errors.New(`relation "` + TableName + `" does not exist`)

// MemoryStore is a concurrency-safe in-memory stand-in for the weather
// table. It follows the same rules as the database: the table must be
// created before inserting, rows are only appended and timestamps are
// assigned on insert.
type MemoryStore struct {
	mu sync.RWMutex

	created bool
	rows    []weather.StoredRecord

	// max number of rows kept (0 = unlimited)
	maxHistory int
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Acquire implements weather.Destination.
func (s *MemoryStore) Acquire(ctx context.Context) (weather.Loader, error) {
	if err := ctx.Err(); err != nil {
		return nil, &weather.PersistenceError{Op: "acquire connection", Err: err}
	}
	return memorySession{store: s}, nil
}

// EnsureSchema creates the table if needed. Calling it again is a no-op.
func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &weather.PersistenceError{Op: "create table", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = true
	return nil
}

// Load appends record with the current time as its timestamp.
func (s *MemoryStore) Load(ctx context.Context, record weather.WeatherRecord) error {
	if err := ctx.Err(); err != nil {
		return &weather.PersistenceError{Op: "insert", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.created {
		return &weather.PersistenceError{Op: "insert", Err: errNoTable}
	}

	s.rows = append(s.rows, weather.StoredRecord{
		WeatherRecord: record,
		Timestamp:     s.now(),
	})

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.rows) > s.maxHistory {
		over := len(s.rows) - s.maxHistory
		s.rows = s.rows[over:]
	}
	return nil
}

// Latest returns the most recently inserted row.
func (s *MemoryStore) Latest(ctx context.Context) (weather.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return weather.StoredRecord{}, &weather.PersistenceError{Op: "query latest", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rows) == 0 {
		return weather.StoredRecord{}, weather.ErrNoRecords
	}
	return s.rows[len(s.rows)-1], nil
}

// History returns rows between from and to (inclusive), newest first.
func (s *MemoryStore) History(ctx context.Context, from, to time.Time, limit int) ([]weather.StoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &weather.PersistenceError{Op: "query history", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.StoredRecord
	for i := len(s.rows) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		ts := s.rows[i].Timestamp
		if (ts.Equal(from) || ts.After(from)) && (ts.Equal(to) || ts.Before(to)) {
			result = append(result, s.rows[i])
		}
	}

	if len(result) == 0 {
		return nil, weather.ErrNoRecords
	}
	return result, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// memorySession is the per-run handle returned by Acquire.
type memorySession struct {
	store *MemoryStore
}

func (m memorySession) EnsureSchema(ctx context.Context) error {
	return m.store.EnsureSchema(ctx)
}

func (m memorySession) Load(ctx context.Context, record weather.WeatherRecord) error {
	return m.store.Load(ctx, record)
}

func (m memorySession) Release() {}
