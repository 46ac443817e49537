package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/classtrack-api/internal/models"
)

type overrideSweepStore interface {
	ClearAllExpired(ctx context.Context, now time.Time) (int64, error)
}

type activeSlotProvider interface {
	ActiveSlot(ctx context.Context) (*models.TimeSlot, error)
}

// SweeperService periodically clears expired status overrides and observes
// time slot rollovers. The last seen slot id lives in process memory only and
// resets on restart.
type SweeperService struct {
	rooms    overrideSweepStore
	timeCtx  activeSlotProvider
	metrics  *MetricsService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastSlotID *int
}

// NewSweeperService constructs the sweeper.
func NewSweeperService(rooms overrideSweepStore, timeCtx activeSlotProvider, metrics *MetricsService, logger *zap.Logger, interval time.Duration) *SweeperService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweeperService{
		rooms:    rooms,
		timeCtx:  timeCtx,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start boots the ticker goroutine. It stops when the context is cancelled.
func (s *SweeperService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
	s.logger.Info("override expiry sweeper started", zap.Duration("interval", s.interval))
}

// Tick runs one sweep cycle. A tick that fires while the previous one is
// still in flight is skipped rather than stacked.
func (s *SweeperService) Tick(ctx context.Context) {
	if !s.mu.TryLock() {
		s.logger.Debug("sweep still running, skipping tick")
		return
	}
	defer s.mu.Unlock()

	s.observeSlotTransition(ctx)

	cleared, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Warn("override sweep failed", zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSweep(cleared)
	}
	if cleared > 0 {
		s.logger.Info("cleared expired status overrides", zap.Int64("count", cleared))
	}
}

// Sweep clears every override whose expiry is strictly in the past and
// returns the cleared count. The comparison uses the same wall-clock instant
// rule as the resolver's lazy expiry.
func (s *SweeperService) Sweep(ctx context.Context) (int64, error) {
	return s.rooms.ClearAllExpired(ctx, s.now())
}

// LastSlotID returns the most recently observed active slot id, nil when the
// sweeper last saw no active slot or has not ticked yet.
func (s *SweeperService) LastSlotID() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSlotID
}

func (s *SweeperService) observeSlotTransition(ctx context.Context) {
	slot, err := s.timeCtx.ActiveSlot(ctx)
	if err != nil {
		s.logger.Warn("failed to resolve active slot", zap.Error(err))
		return
	}

	var current *int
	if slot != nil {
		id := slot.ID
		current = &id
	}

	if slotIDEqual(current, s.lastSlotID) {
		return
	}

	s.logger.Info("time slot transition",
		zap.Any("from", slotIDValue(s.lastSlotID)),
		zap.Any("to", slotIDValue(current)))
	if s.metrics != nil {
		s.metrics.RecordSlotTransition()
	}
	s.lastSlotID = current
}

func slotIDEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func slotIDValue(id *int) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
