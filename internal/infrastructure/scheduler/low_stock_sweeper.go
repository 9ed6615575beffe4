// Package scheduler runs background jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StockScanner evaluates every product at or below the critical threshold
// and returns how many alerts it raised.
type StockScanner interface {
	Scan(ctx context.Context) (int, error)
}

// LowStockSweeperConfig holds configuration for the low stock sweeper
type LowStockSweeperConfig struct {
	// Interval between sweeps. Zero disables the sweeper.
	Interval time.Duration
	// RunTimeout bounds a single sweep. Defaults to Interval.
	RunTimeout time.Duration
}

// Validate checks the configuration
func (c LowStockSweeperConfig) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LowStockSweeper periodically re-scans stock levels as a safety net for
// quantity changes that did not publish a StockAdjusted event.
type LowStockSweeper struct {
	config  LowStockSweeperConfig
	scanner StockScanner
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runs      int
}

// NewLowStockSweeper creates a sweeper. It does not start it.
func NewLowStockSweeper(config LowStockSweeperConfig, scanner StockScanner, logger *zap.Logger) (*LowStockSweeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if scanner == nil {
		return nil, fmt.Errorf("%w: scanner is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RunTimeout == 0 {
		config.RunTimeout = config.Interval
	}
	return &LowStockSweeper{config: config, scanner: scanner, logger: logger}, nil
}

// Enabled reports whether a non-zero interval is configured
func (s *LowStockSweeper) Enabled() bool {
	return s.config.Interval > 0
}

// Start launches the sweep loop. It is a no-op when the sweeper is disabled.
func (s *LowStockSweeper) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("Low stock sweeper disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrAlreadyRunning
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Low stock sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep, bounded by ctx.
func (s *LowStockSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Low stock sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runs returns the number of completed sweeps
func (s *LowStockSweeper) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *LowStockSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one scan. Failures are logged; the next tick retries.
func (s *LowStockSweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "inventory.low_stock_sweep")
	defer span.End()

	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("low_stock_sweep"), func(ctx context.Context) {
		started := time.Now()
		alerts, err := s.scanner.Scan(ctx)
		if err != nil {
			telemetry.RecordError(span, err)
			s.logger.Error("Low stock sweep failed", zap.Error(err))
		} else {
			span.SetAttributes(attribute.Int(telemetry.SpanAttrCount, alerts))
			telemetry.SetOK(span)
			s.logger.Debug("Low stock sweep completed",
				zap.Int("alerts", alerts),
				zap.Duration("duration", time.Since(started)),
			)
		}
	})

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
}
