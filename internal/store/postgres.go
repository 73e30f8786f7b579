package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/ironsheep/manga-panels/internal/pipeline"
)

// ErrNotFound is returned when no stored result matches.
var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists panel_extractions (
	id          uuid primary key,
	created_at  timestamptz not null default now(),
	source      text not null,
	page_count  integer not null,
	result_json jsonb not null
);
create index if not exists panel_extractions_source_idx
	on panel_extractions (source, created_at desc)`

// PostgresStore keeps extraction results in the panel_extractions table.
type PostgresStore struct {
	DB *sql.DB

	newID func() uuid.UUID
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db, newID: uuid.New}
}

// OpenPostgres connects through the pgx driver, checks the connection and
// creates the table when missing.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the results table and its index if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save inserts res as a new row.
func (s *PostgresStore) Save(ctx context.Context, source string, res *pipeline.ExtractionResult) error {
	js, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	newID := s.newID
	if newID == nil {
		newID = uuid.New
	}
	const q = `
insert into panel_extractions (id, source, page_count, result_json)
values ($1, $2, $3, $4::jsonb)`
	if _, err := s.DB.ExecContext(ctx, q, newID().String(), source, res.PageCount, js); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// StoredResult is one row of panel_extractions.
type StoredResult struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Source    string
	Result    pipeline.ExtractionResult
}

// Latest returns the most recent result stored for source.
func (s *PostgresStore) Latest(ctx context.Context, source string) (*StoredResult, error) {
	const q = `
select id, created_at, source, result_json
from panel_extractions
where source = $1
order by created_at desc
limit 1`
	var (
		id  string
		row StoredResult
		js  []byte
	)
	err := s.DB.QueryRowContext(ctx, q, source).Scan(&id, &row.CreatedAt, &row.Source, &js)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query result: %w", err)
	}
	if row.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	if err := json.Unmarshal(js, &row.Result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &row, nil
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
