// Package catalog keeps the schematic records in a SQLite database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for missing or deleted records.
var ErrNotFound = errors.New("schematic not found")

// Schematic is one catalog record. Type is the format selector of the
// stored source file and SubType its format version.
type Schematic struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        int    `json:"type"`
	SubType     int    `json:"sub_type"`
	IsDeleted   bool   `json:"is_deleted"`
	Sizes       string `json:"sizes"`
	User        string `json:"user"`
	IsUpload    bool   `json:"is_upload"`
	Version     int    `json:"version"`
	VersionList string `json:"version_list"`
	GameVersion string `json:"game_version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Page is one page of a listing.
type Page struct {
	Data     []Schematic `json:"data"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Catalog is a SQLite backed schematic catalog.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schematics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type INTEGER NOT NULL,
			sub_type INTEGER NOT NULL DEFAULT 0,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			sizes TEXT NOT NULL DEFAULT '',
			user TEXT NOT NULL DEFAULT '',
			is_upload BOOLEAN NOT NULL DEFAULT FALSE,
			version INTEGER NOT NULL DEFAULT 0,
			version_list TEXT NOT NULL DEFAULT '',
			game_version TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
		);`,
		`CREATE INDEX IF NOT EXISTS schematics_created ON schematics(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add inserts a record and returns its id.
func (c *Catalog) Add(ctx context.Context, s Schematic) (int64, error) {
	res, err := c.db.ExecContext(ctx, `INSERT INTO schematics (
			name, description, type, sub_type, sizes, user,
			is_upload, version, version_list, game_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, s.Description, s.Type, s.SubType, s.Sizes, s.User,
		s.IsUpload, s.Version, s.VersionList, s.GameVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("insert schematic: %w", err)
	}
	return res.LastInsertId()
}

const columns = `id, name, description, type, sub_type, is_deleted, sizes, user,
	is_upload, version, version_list, game_version, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Schematic, error) {
	var s Schematic
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Type, &s.SubType, &s.IsDeleted, &s.Sizes, &s.User,
		&s.IsUpload, &s.Version, &s.VersionList, &s.GameVersion, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Find returns the record with the given id unless it was deleted.
func (c *Catalog) Find(ctx context.Context, id int64) (Schematic, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+columns+` FROM schematics WHERE id = ? AND is_deleted = FALSE`, id)
	s, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Schematic{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Schematic{}, fmt.Errorf("find schematic %d: %w", id, err)
	}
	return s, nil
}

// Update rewrites the editable fields of a record.
func (c *Catalog) Update(ctx context.Context, s Schematic) error {
	return c.exec(ctx, s.ID, `UPDATE schematics SET
			name = ?, description = ?, type = ?, sub_type = ?, sizes = ?, user = ?,
			version = ?, version_list = ?, game_version = ?,
			updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')
		WHERE id = ? AND is_deleted = FALSE`,
		s.Name, s.Description, s.Type, s.SubType, s.Sizes, s.User,
		s.Version, s.VersionList, s.GameVersion, s.ID,
	)
}

// UpdateName changes the name and description of a record.
func (c *Catalog) UpdateName(ctx context.Context, id int64, name, description string) error {
	return c.exec(ctx, id, `UPDATE schematics SET
			name = ?, description = ?,
			updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')
		WHERE id = ? AND is_deleted = FALSE`,
		name, description, id,
	)
}

// Delete marks a record as deleted. The row is kept.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	return c.exec(ctx, id, `UPDATE schematics SET
			is_deleted = TRUE,
			updated_at = strftime('%Y-%m-%d %H:%M:%f', 'now')
		WHERE id = ? AND is_deleted = FALSE`,
		id,
	)
}

func (c *Catalog) exec(ctx context.Context, id int64, query string, args ...any) error {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update schematic %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// List returns a page of records, newest first. page starts at 1 and
// pageSize is clamped to 1..100. A non-empty filter matches names and
// descriptions containing it.
func (c *Catalog) List(ctx context.Context, filter string, page, pageSize int) (Page, error) {
	page = max(page, 1)
	pageSize = min(max(pageSize, 1), 100)

	pattern := ""
	if filter != "" {
		pattern = "%" + filter + "%"
	}
	rows, err := c.db.QueryContext(ctx, `SELECT `+columns+` FROM schematics
		WHERE (? = '' OR name LIKE ? OR description LIKE ?)
			AND is_deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		pattern, pattern, pattern, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return Page{}, fmt.Errorf("list schematics: %w", err)
	}
	defer rows.Close()

	out := Page{Data: make([]Schematic, 0, pageSize), Page: page, PageSize: pageSize}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return Page{}, fmt.Errorf("list schematics: %w", err)
		}
		out.Data = append(out.Data, s)
	}
	return out, rows.Err()
}
