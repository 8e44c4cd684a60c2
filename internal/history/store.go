// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package history persists translation records. Stores are append-only:
// records are written once after a successful run and never updated.
package history

import (
	"context"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/record"
)

// Store is an append-only translation history.
type Store interface {
	// Append persists one record. A failed append never corrupts records
	// already stored.
	Append(ctx context.Context, rec record.TranslationRecord) error

	// ListAll returns every stored record, newest first.
	ListAll(ctx context.Context) ([]record.TranslationRecord, error)

	Close() error
}
