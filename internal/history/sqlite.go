// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS translations (
	id TEXT PRIMARY KEY,
	original TEXT NOT NULL,
	translated TEXT NOT NULL,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	confidence REAL NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translations_timestamp ON translations(timestamp);
`

// SQLiteStore persists history in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Infof("history store initialized (sqlite: %s)", dbPath)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec record.TranslationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (id, original, translated, source_lang, target_lang, confidence, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OriginalText, rec.TranslatedText,
		string(rec.SourceLang), string(rec.TargetLang), rec.Confidence, rec.Timestamp,
	)
	if err != nil {
		return fault.Wrap(fault.KindStoreWrite, err, "failed to insert history record")
	}
	return nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]record.TranslationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, original, translated, source_lang, target_lang, confidence, timestamp
		 FROM translations ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []record.TranslationRecord{}
	for rows.Next() {
		var rec record.TranslationRecord
		var src, tgt string
		if err := rows.Scan(&rec.ID, &rec.OriginalText, &rec.TranslatedText,
			&src, &tgt, &rec.Confidence, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.SourceLang = lang.Code(src)
		rec.TargetLang = lang.Code(tgt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
