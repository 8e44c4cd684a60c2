// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

func TestPostgresStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	s := NewPostgresStoreFromDB(db)
	rec := record.New("Bonjour", "Hello", "fr", "en", 0.99)

	mock.ExpectExec("INSERT INTO translations").
		WithArgs(rec.ID, "Bonjour", "Hello", "fr", "en", 0.99, rec.Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Append(context.Background(), rec); err != nil {
		t.Errorf("unexpected append error: %s", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPostgresStore_ListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "original", "translated", "source_lang", "target_lang", "confidence", "timestamp"}).
		AddRow("id-2", "Monde", "World", "fr", "en", 0.95, now).
		AddRow("id-1", "Bonjour", "Hello", "fr", "en", 0.99, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, original, translated, source_lang, target_lang, confidence, timestamp").
		WillReturnRows(rows)

	s := NewPostgresStoreFromDB(db)
	records, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected list error: %s", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "id-2" || records[1].ID != "id-1" {
		t.Errorf("unexpected ordering: %s, %s", records[0].ID, records[1].ID)
	}
	if records[1].SourceLang != "fr" {
		t.Errorf("expected source fr, got %s", records[1].SourceLang)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
