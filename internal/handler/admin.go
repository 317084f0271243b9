package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"trade-toolkit-api/internal/repository"
	"trade-toolkit-api/internal/service"
	"trade-toolkit-api/pkg/apierror"
	"trade-toolkit-api/pkg/response"
)

// AdminHandler handles stats, audit inspection, and the full reset that
// backs the Settings screen.
type AdminHandler struct {
	ledger    *service.LedgerService
	audit     repository.AuditRepository
	cacheType string
	auditType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	ledger *service.LedgerService,
	audit repository.AuditRepository,
	cacheType, auditType string,
) *AdminHandler {
	return &AdminHandler{
		ledger:    ledger,
		audit:     audit,
		cacheType: cacheType,
		auditType: auditType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["cache_type"] = h.cacheType
	stats["audit_db_type"] = h.auditType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if ledger, err := h.ledger.Snapshot(ctx); err == nil {
		pending := 0
		for _, trades := range ledger.ActiveTrades {
			for _, items := range trades {
				pending += len(items)
			}
		}
		stats["ledger"] = map[string]interface{}{
			"inventory_accounts": len(ledger.Accounts),
			"card_accounts":      len(ledger.Cards),
			"pending_items":      pending,
		}
	} else {
		stats["ledger"] = map[string]interface{}{"error": err.Error()}
	}

	if h.audit != nil {
		if _, total, err := h.audit.List(ctx, 1, 0); err == nil {
			stats["audit"] = map[string]interface{}{
				"entries": total,
				"status":  "connected",
			}
		} else {
			stats["audit"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["audit"] = map[string]interface{}{"status": "not_configured"}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}

	response.OK(w, stats)
}

// GetAudit handles GET /api/v1/admin/audit with limit/offset pagination.
func (h *AdminHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		response.Error(w, apierror.InternalError("audit log unavailable"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to fetch audit log"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, entries, limit, offset, total)
}

// Reset handles POST /api/v1/admin/reset - wipes the whole ledger.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reset(r.Context()); err != nil {
		response.Error(w, ledgerError(err))
		return
	}
	response.OK(w, map[string]string{"status": "reset"})
}
