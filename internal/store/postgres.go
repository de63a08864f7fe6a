package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
)

// TableName is the destination table.
const TableName = "weather_data"

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS weather_data (
		latitude FLOAT,
		longitude FLOAT,
		temperature FLOAT,
		windspeed FLOAT,
		winddirection FLOAT,
		weathercode INT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

const insertSQL = `
	INSERT INTO weather_data (latitude, longitude, temperature, windspeed, winddirection, weathercode)
	VALUES ($1, $2, $3, $4, $5, $6)
`

const selectColumns = `latitude, longitude, temperature, windspeed, winddirection, weathercode, timestamp`

// PostgresStore implements weather.Destination and weather.Reader on top
// of a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Acquire takes a dedicated connection from the pool for one run.
func (s *PostgresStore) Acquire(ctx context.Context) (weather.Loader, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, &weather.PersistenceError{Op: "acquire connection", Err: err}
	}
	return &postgresSession{conn: conn}, nil
}

// Latest returns the most recently inserted row.
func (s *PostgresStore) Latest(ctx context.Context) (weather.StoredRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM weather_data ORDER BY timestamp DESC LIMIT 1`

	rec, err := scanRecord(s.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return weather.StoredRecord{}, weather.ErrNoRecords
	}
	if err != nil {
		return weather.StoredRecord{}, &weather.PersistenceError{Op: "query latest", Err: err}
	}
	return rec, nil
}

// History retrieves rows between from and to, newest first. A limit <= 0
// returns every matching row.
func (s *PostgresStore) History(ctx context.Context, from, to time.Time, limit int) ([]weather.StoredRecord, error) {
	var lim any = limit
	if limit <= 0 {
		lim = nil // LIMIT NULL
	}

	query := `
		SELECT ` + selectColumns + `
		FROM weather_data
		WHERE timestamp BETWEEN $1 AND $2
		ORDER BY timestamp DESC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, from.UTC(), to.UTC(), lim)
	if err != nil {
		return nil, &weather.PersistenceError{Op: "query history", Err: err}
	}
	defer rows.Close()

	var results []weather.StoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &weather.PersistenceError{Op: "scan history row", Err: err}
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &weather.PersistenceError{Op: "query history", Err: err}
	}

	if len(results) == 0 {
		return nil, weather.ErrNoRecords
	}
	return results, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &weather.PersistenceError{Op: "ping", Err: err}
	}
	return nil
}

func scanRecord(row pgx.Row) (weather.StoredRecord, error) {
	var rec weather.StoredRecord
	err := row.Scan(
		&rec.Latitude, &rec.Longitude, &rec.Temperature,
		&rec.WindSpeed, &rec.WindDirection, &rec.WeatherCode, &rec.Timestamp,
	)
	return rec, err
}

// postgresSession holds the connection of a single run.
type postgresSession struct {
	conn *pgxpool.Conn
}

func (p *postgresSession) EnsureSchema(ctx context.Context) error {
	if _, err := p.conn.Exec(ctx, createTableSQL); err != nil {
		return &weather.PersistenceError{Op: "create table", Err: err}
	}
	return nil
}

// Load inserts the record in its own transaction; the row is either
// committed or absent when Load returns.
func (p *postgresSession) Load(ctx context.Context, record weather.WeatherRecord) error {
	err := pgx.BeginFunc(ctx, p.conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, insertSQL,
			record.Latitude, record.Longitude, record.Temperature,
			record.WindSpeed, record.WindDirection, record.WeatherCode,
		)
		return err
	})
	if err != nil {
		return &weather.PersistenceError{Op: "insert", Err: err}
	}
	return nil
}

func (p *postgresSession) Release() {
	p.conn.Release()
}
