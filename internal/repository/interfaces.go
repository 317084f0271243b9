package repository

import (
	"context"
	"time"

	"trade-toolkit-api/internal/model"
)

// LedgerRepository defines whole-document ledger persistence.
type LedgerRepository interface {
	// Load reads the full ledger document. A missing or corrupt file is
	// repaired to an empty document, never surfaced as an error.
	Load(ctx context.Context) (*model.Ledger, error)

	// Save rewrites the full ledger document.
	Save(ctx context.Context, ledger *model.Ledger) error

	// Close releases any resources held by the repository.
	Close() error
}

// AuditRepository defines audit log storage for ledger mutations.
type AuditRepository interface {
	// Insert appends one audit entry.
	Insert(ctx context.Context, entry *model.AuditEntry) error

	// List returns entries newest first, with the total count.
	List(ctx context.Context, limit, offset int) ([]model.AuditEntry, int64, error)

	// DeleteOlderThan prunes entries older than the threshold and returns
	// how many were removed.
	DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error)

	// Close closes the underlying connection.
	Close() error
}
