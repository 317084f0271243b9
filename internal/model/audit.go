package model

import "time"

// AuditEntry records a single ledger mutation.
type AuditEntry struct {
	ID        int64     `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Op        string    `json:"op"`
	Account   string    `json:"account,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
