package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"trade-toolkit-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLAuditRepository implements AuditRepository using MySQL, for setups
// that point the toolkit at a shared database.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLAuditRepository(dsn string) (*MySQLAuditRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS ledger_audit (
		id BIGINT PRIMARY KEY AUTO_INCREMENT,
		request_id VARCHAR(64) NOT NULL DEFAULT '',
		op VARCHAR(64) NOT NULL,
		account VARCHAR(255) NOT NULL DEFAULT '',
		detail TEXT,
		created_at DATETIME NOT NULL,
		INDEX idx_audit_created_at (created_at)
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}

	log.Println("[MySQLAuditRepository] Initialized")
	return &MySQLAuditRepository{db: db}, nil
}

// Insert appends one audit entry.
func (r *MySQLAuditRepository) Insert(ctx context.Context, entry *model.AuditEntry) error {
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
func (r *MySQLAuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditEntry, int64, error) {
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
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Op, &e.Account, &detail, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Detail = detail.String
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
func (r *MySQLAuditRepository) DeleteOlderThan(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)

	result, err := r.db.ExecContext(ctx, `DELETE FROM ledger_audit WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (r *MySQLAuditRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLAuditRepository implements AuditRepository
var _ AuditRepository = (*MySQLAuditRepository)(nil)
