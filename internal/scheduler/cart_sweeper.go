package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartSweeper evicts carts that have not been touched for IdleTTL
type CartSweeper struct {
	cron     *cron.Cron
	schedule string
	idleTTL  time.Duration
	carts    *cart.Registry
	metrics  *metrics.Metrics
}

func NewCartSweeper(carts *cart.Registry, schedule string, idleTTL time.Duration, m *metrics.Metrics) *CartSweeper {
	return &CartSweeper{
		cron:     cron.New(),
		schedule: schedule,
		idleTTL:  idleTTL,
		carts:    carts,
		metrics:  m,
	}
}

// Start registers the sweep job and starts the scheduler
func (s *CartSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Sweep); err != nil {
		logger.Error("Failed to add cron job for cart sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart sweeper started", map[string]interface{}{
		"schedule": s.schedule,
		"idle_ttl": s.idleTTL.String(),
	})
	return nil
}

// Sweep runs one eviction pass
func (s *CartSweeper) Sweep() {
	evicted := s.carts.Sweep(s.idleTTL)
	remaining := s.carts.Len()
	s.metrics.SetActiveCarts(remaining)

	if evicted > 0 {
		logger.Info("Idle carts evicted", map[string]interface{}{
			"evicted":   evicted,
			"remaining": remaining,
		})
	}
}

// Stop stops the scheduler and waits for a running sweep to finish, bounded by ctx
func (s *CartSweeper) Stop(ctx context.Context) {
	logger.Info("Stopping cart sweeper...", nil)
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Cart sweeper stop timed out", nil)
	}
	logger.Info("Cart sweeper stopped", nil)
}
