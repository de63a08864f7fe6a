package weather

import (
	"context"
	"time"
)

// Getter executes a GET for a path against the pre-resolved forecast host
// and returns the status code and the raw body.
type Getter interface {
	Get(ctx context.Context, path string) (status int, body []byte, err error)
}

// Loader writes records during a single run. It is obtained from a
// Destination and must be released when the run ends.
type Loader interface {
	// EnsureSchema creates the weather table if it does not exist yet.
	EnsureSchema(ctx context.Context) error
	// Load appends one row; the store assigns its timestamp.
	Load(ctx context.Context, record WeatherRecord) error
	Release()
}

// Destination hands out a fresh Loader per run.
type Destination interface {
	Acquire(ctx context.Context) (Loader, error)
}

// Reader gives read access to previously loaded rows.
type Reader interface {
	Latest(ctx context.Context) (StoredRecord, error)
	// History returns rows with from <= timestamp <= to, newest first.
	History(ctx context.Context, from, to time.Time, limit int) ([]StoredRecord, error)
}
