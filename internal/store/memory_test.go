package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
)

var sampleRecord = weather.WeatherRecord{
	Latitude:      52.52,
	Longitude:     13.405,
	Temperature:   18.3,
	WindSpeed:     9.4,
	WindDirection: 210,
	WeatherCode:   3,
}

func TestMemoryStoreEnsureSchemaIsIdempotent(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.EnsureSchema(ctx); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
	}
	if err := s.Load(ctx, sampleRecord); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := s.History(ctx, time.Time{}, time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("schema call must keep existing rows, got %d", len(rows))
	}
}

func TestMemoryStoreLoadRequiresSchema(t *testing.T) {
	s := NewMemoryStore(0)

	err := s.Load(context.Background(), sampleRecord)

	var persistErr *weather.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if _, err := s.Latest(context.Background()); !errors.Is(err, weather.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

// TestMemoryStoreLoadAssignsTimestamp checks the row carries the record's
// fields and a timestamp taken during Load.
func TestMemoryStoreLoadAssignsTimestamp(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := time.Now().UTC()
	if err := s.Load(ctx, sampleRecord); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC()

	rec, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.WeatherRecord != sampleRecord {
		t.Fatalf("expected %+v, got %+v", sampleRecord, rec.WeatherRecord)
	}
	if rec.Timestamp.Before(before) || rec.Timestamp.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", rec.Timestamp, before, after)
	}
}

func TestMemoryStoreKeepsDuplicates(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	_ = s.EnsureSchema(ctx)

	for i := 0; i < 2; i++ {
		if err := s.Load(ctx, sampleRecord); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rows, err := s.History(ctx, time.Time{}, time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestMemoryStoreHistory(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	_ = s.EnsureSchema(ctx)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	for code := 1; code <= 4; code++ {
		rec := sampleRecord
		rec.WeatherCode = code
		if err := s.Load(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Retention keeps the last three rows (01:00 was dropped).
	rows, err := s.History(ctx, base, base.Add(24*time.Hour), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].WeatherCode != 4 || rows[2].WeatherCode != 2 {
		t.Fatalf("expected newest first, got codes %d..%d", rows[0].WeatherCode, rows[2].WeatherCode)
	}

	// Bounds are inclusive.
	rows, err = s.History(ctx, base.Add(2*time.Hour), base.Add(3*time.Hour), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	rows, err = s.History(ctx, base, base.Add(24*time.Hour), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].WeatherCode != 4 {
		t.Fatalf("expected only the newest row, got %+v", rows)
	}

	if _, err := s.History(ctx, base.Add(48*time.Hour), base.Add(72*time.Hour), 0); !errors.Is(err, weather.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	s := NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Acquire(ctx); err == nil {
		t.Fatalf("expected error for canceled context")
	}

	var persistErr *weather.PersistenceError
	if err := s.EnsureSchema(ctx); !errors.As(err, &persistErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if _, err := s.Latest(ctx); !errors.As(err, &persistErr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled PersistenceError from Latest, got %v", err)
	}
	if _, err := s.History(ctx, time.Time{}, time.Now(), 0); !errors.As(err, &persistErr) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled PersistenceError from History, got %v", err)
	}
}
