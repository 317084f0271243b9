package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"trade-toolkit-api/internal/model"
)

// FileLedgerRepository implements LedgerRepository over a single JSON file,
// pretty-printed with 4-space indent. The file format is the external
// contract shared with older versions of the toolkit.
type FileLedgerRepository struct {
	path string
	mu   sync.RWMutex
}

// NewFileLedgerRepository creates a file-backed ledger repository, creating
// the parent directory if needed.
func NewFileLedgerRepository(path string) (*FileLedgerRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	log.Printf("[FileLedgerRepository] Initialized with document: %s", path)
	return &FileLedgerRepository{path: path}, nil
}

// Load reads and decodes the whole document. A missing file or one that
// fails to decode yields an empty ledger: the store repairs rather than
// reports, matching how every prior version of the toolkit behaved.
func (r *FileLedgerRepository) Load(ctx context.Context) (*model.Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[FileLedgerRepository] Read failed, starting empty: %v", err)
		}
		return model.NewLedger(), nil
	}

	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		log.Printf("[FileLedgerRepository] Corrupt document, starting empty: %v", err)
		return model.NewLedger(), nil
	}

	ledger.Normalize()
	return &ledger, nil
}

// Save rewrites the whole document atomically (temp file + rename) so a
// crash mid-write never leaves a truncated ledger behind.
func (r *FileLedgerRepository) Save(ctx context.Context, ledger *model.Ledger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(ledger, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// Close is a no-op for the file repository.
func (r *FileLedgerRepository) Close() error {
	return nil
}

// Ensure FileLedgerRepository implements LedgerRepository
var _ LedgerRepository = (*FileLedgerRepository)(nil)
