package service

import (
	"context"
	"log"
	"sync"
	"time"

	"trade-toolkit-api/internal/repository"
)

// RetentionConfig holds configuration for the audit retention scheduler.
type RetentionConfig struct {
	// MaxAge is how long audit entries are kept. Default: 30 days.
	MaxAge time.Duration

	// Interval is how often pruning runs. Default: 24 hours.
	Interval time.Duration
}

// RetentionScheduler periodically prunes old audit entries so the audit
// database does not grow without bound on a long-lived install.
type RetentionScheduler struct {
	audit  repository.AuditRepository
	config RetentionConfig

	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
}

// NewRetentionScheduler creates a retention scheduler.
func NewRetentionScheduler(audit repository.AuditRepository, config RetentionConfig) *RetentionScheduler {
	if config.MaxAge <= 0 {
		config.MaxAge = 30 * 24 * time.Hour
	}
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	return &RetentionScheduler{
		audit:  audit,
		config: config,
		stopCh: make(chan struct{}),
	}
}

// Start begins the pruning loop.
func (s *RetentionScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.config.Interval)
	s.mu.Unlock()

	log.Printf("[RetentionScheduler] Started - interval: %v, max age: %v",
		s.config.Interval, s.config.MaxAge)

	go s.run()
}

func (s *RetentionScheduler) run() {
	for {
		select {
		case <-s.ticker.C:
			s.prune()
		case <-s.stopCh:
			log.Printf("[RetentionScheduler] Stopped")
			return
		}
	}
}

func (s *RetentionScheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.audit.DeleteOlderThan(ctx, s.config.MaxAge)
	if err != nil {
		log.Printf("[RetentionScheduler] Prune failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[RetentionScheduler] Pruned %d audit entries", deleted)
	}
}

// Stop stops the scheduler.
func (s *RetentionScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
		s.running = false
	})
}

// RunNow triggers an immediate prune and reports how many entries went.
func (s *RetentionScheduler) RunNow() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	return s.audit.DeleteOlderThan(ctx, s.config.MaxAge)
}
