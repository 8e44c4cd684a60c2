// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

func TestSQLiteStore_AppendAndList(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	older := record.New("Bonjour", "Hello", "fr", "en", 0.99)
	older.Timestamp = time.Now().UTC().Add(-time.Hour)
	newer := record.New("Monde", "World", "fr", "en", 0.95)

	require.NoError(t, s.Append(ctx, older))
	require.NoError(t, s.Append(ctx, newer))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, older.ID, records[1].ID)
	assert.Equal(t, "Bonjour", records[1].OriginalText)
	assert.Equal(t, 0.99, records[1].Confidence)
}

func TestSQLiteStore_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	rec := record.New("x", "y", "en", "fr", 0.5)
	require.NoError(t, s.Append(ctx, rec))
	require.Error(t, s.Append(ctx, rec))
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
