package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trade-toolkit-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteAuditRepository implements AuditRepository using SQLite.
// Thread-safe with WAL mode; the default backend for local use.
type SQLiteAuditRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteAuditRepository creates a new SQLite audit repository.
// dbPath is the path to the SQLite database file (e.g., "./data/audit.db")
func NewSQLiteAuditRepository(dbPath string) (*SQLiteAuditRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createAuditTable(db); err != nil {
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}

	log.Printf("[SQLiteAuditRepository] Initialized with database: %s", dbPath)
	return &SQLiteAuditRepository{db: db}, nil
}

func createAuditTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS ledger_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT DEFAULT '',
		op TEXT NOT NULL,
		account TEXT DEFAULT '',
		detail TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON ledger_audit(created_at);
	`
	_, err := db.Exec(query)
	return err
}

// Insert appends one audit entry.
func (r *SQLiteAuditRepository) Insert(ctx context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO ledger_audit (request_id, op, account, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		entry.RequestID, entry.Op, entry.Account, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first, with the total count.
func (r *SQLiteAuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT id, request_id, op, account, detail, created_at
		FROM ledger_audit ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Op, &e.Account, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledger_audit").Scan(&total); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// DeleteOlderThan prunes entries older than the threshold.
func (r *SQLiteAuditRepository) DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-threshold)

	result, err := r.db.ExecContext(ctx, `DELETE FROM ledger_audit WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		log.Printf("[SQLiteAuditRepository] Pruned %d audit entries (threshold: %v)", deleted, threshold)
	}
	return deleted, nil
}

// Close closes the database connection.
func (r *SQLiteAuditRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteAuditRepository implements AuditRepository
var _ AuditRepository = (*SQLiteAuditRepository)(nil)
