// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS translations (
	id TEXT PRIMARY KEY,
	original TEXT NOT NULL,
	translated TEXT NOT NULL,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translations_timestamp ON translations(timestamp);
`

// PostgresStore persists history in a shared PostgreSQL database, for
// deployments where several instances serve the same history.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN cannot be empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Info("history store initialized (postgres)")
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing connection. Schema management is
// the caller's responsibility.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec record.TranslationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translations (id, original, translated, source_lang, target_lang, confidence, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.OriginalText, rec.TranslatedText,
		string(rec.SourceLang), string(rec.TargetLang), rec.Confidence, rec.Timestamp,
	)
	if err != nil {
		return fault.Wrap(fault.KindStoreWrite, err, "failed to insert history record")
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]record.TranslationRecord, error) {
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

func (s *PostgresStore) Close() error { return s.db.Close() }
