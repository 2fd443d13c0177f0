// Package library persists saved workflow IR documents under a conventional
// library path, the collaborator-level save()/list()/describe() surface of
// spec.md §6, backed by a single-file embedded SQLite database.
//
// Grounded on dshills-langgraph-go's graph/store/sqlite.go: WAL mode,
// migration-on-open via CREATE TABLE IF NOT EXISTS, a closed-guard mutex, and
// parameterized queries. The schema here is far simpler than that store's
// per-step checkpoint/outbox tables — one row per saved workflow is all
// save()/list()/describe() need.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a saved workflow name has no matching row.
var ErrNotFound = errors.New("library: workflow not found")

// ErrAlreadyExists is returned by Save when name is already in use and
// force was not set.
var ErrAlreadyExists = errors.New("library: workflow already exists")

// ErrClosed is returned by any method called after Close.
var ErrClosed = errors.New("library: store is closed")

// ErrInvalidName is returned when a save() name fails spec.md §6's pattern
// or length checks.
var ErrInvalidName = errors.New("library: invalid name")

// namePattern is spec.md §6's save() name pattern: lowercase letters,
// digits, and hyphens only.
const namePattern = `^[a-z0-9-]+$`

var nameRe = regexp.MustCompile(namePattern)

// CLIStrictNameLen and LibraryNameLen are the two length ceilings spec.md §6
// applies to a saved workflow's name, depending on the calling layer.
const (
	CLIStrictNameLen = 30
	LibraryNameLen   = 50
)

type saveInput struct {
	Name string `validate:"required,max=50"`
}

var validate = validator.New()

// ValidateName checks name against spec.md §6's pattern and the length
// ceiling for the given layer. strict selects the CLI-strict 30-character
// ceiling; otherwise the looser 50-character library-layer ceiling applies.
func ValidateName(name string, strict bool) error {
	if err := validate.Struct(saveInput{Name: name}); err != nil {
		return fmt.Errorf("%w: name must be non-empty and at most %d characters", ErrInvalidName, LibraryNameLen)
	}
	if strict && len(name) > CLIStrictNameLen {
		return fmt.Errorf("%w: name %q exceeds %d characters at the CLI-strict layer", ErrInvalidName, name, CLIStrictNameLen)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: name %q must match %s", ErrInvalidName, name, namePattern)
	}
	return nil
}

// Record is a saved workflow's metadata, as returned by List and Describe.
type Record struct {
	Name        string
	Description string
	Metadata    map[string]any
	Path        string
	SavedAt     time.Time
	UpdatedAt   time.Time
}

// Library is a SQLite-backed store of saved workflow IR documents.
type Library struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	closed bool
}

// Open creates or opens the library database at path (use ":memory:" for an
// ephemeral, test-only library) and migrates its schema.
func Open(path string) (*Library, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("library: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("library: %s: %w", pragma, err)
		}
	}

	l := &Library{db: db, path: path}
	if err := l.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Library) migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS workflows (
			name TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			ir_json TEXT NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			saved_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("library: migrate: %w", err)
	}
	return nil
}

// Path returns the database file path Open was given.
func (l *Library) Path() string { return l.path }

// Close releases the underlying database connection. Safe to call more than
// once.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// SaveOptions carries save()'s optional fields per spec.md §6.
type SaveOptions struct {
	Metadata map[string]any
	Force    bool
}

// Save persists ir under name, returning the conventional library path spec.md
// §6 describes ("<database path>#<name>", since a single SQLite file — not a
// directory tree of one-file-per-workflow — is the library's on-disk form
// here). Name is validated at the library-layer (50-char) ceiling; callers at
// the CLI boundary should additionally call ValidateName(name, true) before
// reaching here, per spec.md §6's two-ceiling rule.
func (l *Library) Save(ctx context.Context, ir []byte, name, description string, opts SaveOptions) (string, error) {
	if err := ValidateName(name, false); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return "", ErrClosed
	}

	if !opts.Force {
		var exists int
		err := l.db.QueryRowContext(ctx, `SELECT 1 FROM workflows WHERE name = ?`, name).Scan(&exists)
		if err == nil {
			return "", fmt.Errorf("%w: %q", ErrAlreadyExists, name)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("library: save: %w", err)
		}
	}

	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("library: save: encode metadata: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO workflows (name, description, ir_json, metadata_json, saved_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			ir_json = excluded.ir_json,
			metadata_json = excluded.metadata_json,
			updated_at = excluded.updated_at
	`, name, description, string(ir), string(metadataJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("library: save: %w", err)
	}

	return fmt.Sprintf("%s#%s", l.path, name), nil
}

// Load returns the raw IR bytes saved under name.
func (l *Library) Load(ctx context.Context, name string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	var irJSON string
	err := l.db.QueryRowContext(ctx, `SELECT ir_json FROM workflows WHERE name = ?`, name).Scan(&irJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("library: load: %w", err)
	}
	return []byte(irJSON), nil
}

// Describe returns the metadata row for a single saved workflow, the
// structured-doc counterpart to spec.md §6's describe() for registry types.
func (l *Library) Describe(ctx context.Context, name string) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return Record{}, ErrClosed
	}
	return l.describeLocked(ctx, name)
}

func (l *Library) describeLocked(ctx context.Context, name string) (Record, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT name, description, metadata_json, saved_at, updated_at
		FROM workflows WHERE name = ?
	`, name)
	return scanRecord(l.path, row)
}

// List returns every saved workflow's metadata, ordered by name.
func (l *Library) List(ctx context.Context) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT name, description, metadata_json, saved_at, updated_at
		FROM workflows ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(l.path, rows)
		if err != nil {
			return nil, fmt.Errorf("library: list: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	return records, nil
}

// Delete removes a saved workflow. It is not an error to delete a name that
// does not exist.
func (l *Library) Delete(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	_, err := l.db.ExecContext(ctx, `DELETE FROM workflows WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("library: delete: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(libPath string, row scanner) (Record, error) {
	var name, description, metadataJSON, savedAt, updatedAt string
	err := row.Scan(&name, &description, &metadataJSON, &savedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w", ErrNotFound)
	}
	if err != nil {
		return Record{}, err
	}

	var metadata map[string]any
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return Record{}, fmt.Errorf("decode metadata: %w", err)
	}

	savedAtTime, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return Record{}, fmt.Errorf("decode saved_at: %w", err)
	}
	updatedAtTime, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("decode updated_at: %w", err)
	}

	return Record{
		Name:        name,
		Description: description,
		Metadata:    metadata,
		Path:        fmt.Sprintf("%s#%s", libPath, name),
		SavedAt:     savedAtTime,
		UpdatedAt:   updatedAtTime,
	}, nil
}
