package learning

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/filesort/internal/model"

	_ "modernc.org/sqlite" // SQLite driver
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS patterns (
		keyword  TEXT NOT NULL,
		category TEXT NOT NULL,
		count    INTEGER NOT NULL CHECK (count >= 0),
		PRIMARY KEY (keyword, category)
	)`,
	`CREATE TABLE IF NOT EXISTS corrections (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		filename  TEXT NOT NULL,
		predicted TEXT NOT NULL,
		correct   TEXT NOT NULL,
		timestamp TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stats (
		name  TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
}

// SQLiteStore keeps the learning record in normalized SQLite tables.
// Save rewrites every table inside one transaction.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath; ":memory:" is allowed
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads all tables into a record
func (s *SQLiteStore) Load(ctx context.Context) (*model.LearningRecord, error) {
	record := model.NewLearningRecord()

	rows, err := s.db.QueryContext(ctx, `SELECT keyword, category, count FROM patterns`)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	for rows.Next() {
		var keyword, category string
		var count int
		if err := rows.Scan(&keyword, &category, &count); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		if record.Patterns[keyword] == nil {
			record.Patterns[keyword] = make(map[model.Category]int)
		}
		record.Patterns[keyword][model.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT filename, predicted, correct, timestamp FROM corrections ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	for rows.Next() {
		var c model.Correction
		var predicted, correct string
		if err := rows.Scan(&c.Filename, &predicted, &correct, &c.Timestamp); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		c.Predicted = model.Category(predicted)
		c.Correct = model.Category(correct)
		record.Corrections = append(record.Corrections, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate corrections: %w", err)
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT name, value FROM stats`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		switch name {
		case "total":
			record.Stats.Total = value
		case "correct":
			record.Stats.Correct = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return record, nil
}

// Save replaces the stored record atomically
func (s *SQLiteStore) Save(ctx context.Context, record *model.LearningRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"patterns", "corrections", "stats"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	patternStmt, err := tx.PrepareContext(ctx, `INSERT INTO patterns (keyword, category, count) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare pattern insert: %w", err)
	}
	defer func() { _ = patternStmt.Close() }()

	for keyword, counts := range record.Patterns {
		for category, count := range counts {
			if _, err = patternStmt.ExecContext(ctx, keyword, string(category), count); err != nil {
				return fmt.Errorf("insert pattern %s: %w", keyword, err)
			}
		}
	}

	for _, c := range record.Corrections {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO corrections (filename, predicted, correct, timestamp) VALUES (?, ?, ?, ?)`,
			c.Filename, string(c.Predicted), string(c.Correct), c.Timestamp); err != nil {
			return fmt.Errorf("insert correction: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO stats (name, value) VALUES ('total', ?), ('correct', ?)`,
		record.Stats.Total, record.Stats.Correct); err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
