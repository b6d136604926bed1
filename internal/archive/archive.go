// Package archive stores pricing and risk runs in a SQLite database.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/adjoint/internal/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
)

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	value      REAL NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);`

// Run is one archived computation.
type Run struct {
	ID            uuid.UUID
	Kind          string // price, risk or calibrate
	CreatedAt     time.Time
	Value         float64
	Inputs        map[string]float64
	Sensitivities map[string]float64
}

// payload is the JSON column of a run.
type payload struct {
	Inputs        map[string]float64 `json:"inputs,omitempty"`
	Sensitivities map[string]float64 `json:"sensitivities,omitempty"`
}

// Store is an open archive.
type Store struct {
	db  *sql.DB
	log hclog.Logger
}

// Open opens or creates the archive at path.
func Open(ctx context.Context, path string, logger hclog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}
	log := logging.OrNull(logger).Named("archive")
	log.Debug("archive opened", "path", path)
	return &Store{db: db, log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts r, assigning an ID and creation time when they are zero.
func (s *Store) Save(ctx context.Context, r *Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	body, err := sonnet.Marshal(payload{Inputs: r.Inputs, Sensitivities: r.Sensitivities})
	if err != nil {
		return fmt.Errorf("failed to encode run payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at, value, payload) VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), r.Kind, r.CreatedAt.UTC().Format(timeLayout), r.Value, string(body))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.ID, err)
	}
	s.log.Debug("run saved", "id", r.ID, "kind", r.Kind)
	return nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, created_at, value, payload FROM runs WHERE id = ?`, id.String())
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// List returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, value, payload FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*Run, error) {
	var (
		id, created, body string
		r                 Run
	)
	if err := sc.Scan(&id, &r.Kind, &created, &r.Value, &body); err != nil {
		return nil, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("corrupt timestamp on run %s: %w", id, err)
	}
	var p payload
	if err := sonnet.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("corrupt payload on run %s: %w", id, err)
	}
	r.Inputs, r.Sensitivities = p.Inputs, p.Sensitivities
	return &r, nil
}
