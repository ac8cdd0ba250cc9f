// Package application drives candidate identifiers through the checker.
package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/service"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/throttle"
)

// DefaultBatchSize is the number of identifiers per progress report
const DefaultBatchSize = 1000

// Config holds the use case configuration
type Config struct {
	// BatchSize only sets the progress reporting granularity
	BatchSize int
	// MetricsInterval is how often observers receive a snapshot
	MetricsInterval time.Duration
}

// MetricsObserver observes a running check
type MetricsObserver interface {
	OnMetricsUpdate(metrics *entity.Metrics)
	// OnResult is called once per recorded identifier
	OnResult(id string, result entity.CheckResult)
}

// CheckUseCase orchestrates a batch check
type CheckUseCase struct {
	config   Config
	checker  service.Checker
	throttle *throttle.Throttle
	gate     *Gate
	sink     *Sink
	logger   *zap.Logger

	observers   []MetricsObserver
	metrics     entity.Metrics
	metricsLock sync.RWMutex
	batchesDone atomic.Int64
	stopped     atomic.Bool
}

// NewCheckUseCase creates a new check use case
func NewCheckUseCase(
	config Config,
	checker service.Checker,
	throttle *throttle.Throttle,
	gate *Gate,
	sink *Sink,
	logger *zap.Logger,
) *CheckUseCase {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.MetricsInterval <= 0 {
		config.MetricsInterval = 500 * time.Millisecond
	}
	if gate == nil {
		gate = NewGate()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckUseCase{
		config:   config,
		checker:  checker,
		throttle: throttle,
		gate:     gate,
		sink:     sink,
		logger:   logger,
	}
}

// RegisterMetricsObserver registers a metrics observer. Call before Execute.
func (uc *CheckUseCase) RegisterMetricsObserver(observer MetricsObserver) {
	uc.observers = append(uc.observers, observer)
}

// Execute checks every identifier once. Per-identifier failures are
// recorded as results. When ctx is cancelled no new identifier is
// submitted, the ones in flight finish under their own timeout and are
// recorded, and ctx's error is returned. A sink failure stops submission
// and is returned as is.
func (uc *CheckUseCase) Execute(ctx context.Context, ids []string) (entity.RunStats, error) {
	batches := partition(ids, uc.config.BatchSize)

	start := time.Now()
	uc.metricsLock.Lock()
	uc.metrics = entity.Metrics{
		Total:      len(ids),
		Batches:    len(batches),
		TotalSlots: uc.throttle.Size(),
		StartTime:  start,
	}
	uc.metricsLock.Unlock()
	uc.batchesDone.Store(0)
	uc.stopped.Store(false)

	if len(ids) == 0 {
		uc.logger.Info("nothing to check")
		uc.notifyMetricsObservers()
		return uc.sink.Stats(), nil
	}

	uc.logger.Info("starting check",
		zap.Int("identifiers", len(ids)),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", uc.config.BatchSize),
		zap.Int("concurrency", uc.throttle.Size()),
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var (
		fatalOnce sync.Once
		fatalErr  error
	)
	fail := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancelRun()
		})
	}

	tickerCtx, stopTicker := context.WithCancel(context.Background())
	defer stopTicker()
	go uc.updateMetricsPeriodically(tickerCtx)

	groups := make([]*sync.WaitGroup, len(batches))
	for i, batch := range batches {
		groups[i] = &sync.WaitGroup{}
		groups[i].Add(len(batch))
	}
	watched := make(chan struct{})
	go uc.watchBatches(batches, groups, start, watched)

	// Probes outlive a cancelled run; each one is bounded by its own timeout.
	probeCtx := context.WithoutCancel(ctx)

	var submitErr error
submit:
	for i, batch := range batches {
		for j, id := range batch {
			err := uc.gate.Wait(runCtx)
			if err == nil {
				wg := groups[i]
				id := id
				err = uc.throttle.Go(runCtx, func() {
					defer wg.Done()
					uc.process(probeCtx, id, fail)
				})
			}
			if err != nil {
				submitErr = err
				uc.abandon(groups, batches, i, j)
				break submit
			}
		}
	}

	<-watched
	stopTicker()
	uc.notifyMetricsObservers()

	stats := uc.sink.Stats()
	switch {
	case fatalErr != nil:
		return stats, fatalErr
	case ctx.Err() != nil:
		uc.logger.Warn("check interrupted",
			zap.Int64("checked", stats.TotalChecked),
			zap.Int("remaining", len(ids)-int(stats.TotalChecked)),
		)
		return stats, ctx.Err()
	case submitErr != nil:
		return stats, submitErr
	}

	uc.logger.Info("check complete",
		zap.Int64("checked", stats.TotalChecked),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

// process checks and records one identifier
func (uc *CheckUseCase) process(ctx context.Context, id string, fail func(error)) {
	result := uc.checker.Check(ctx, id)

	if err := uc.sink.Record(id, result); err != nil {
		uc.logger.Error("failed to record result", zap.String("id", id), zap.Error(err))
		fail(err)
		return
	}

	if result.Status.IsError() {
		uc.logger.Warn("checked", zap.String("id", id), zap.Stringer("result", result))
	} else {
		uc.logger.Info("checked", zap.String("id", id), zap.Stringer("result", result))
	}

	for _, observer := range uc.observers {
		observer.OnResult(id, result)
	}
}

// abandon releases the batch counters of every identifier that was never
// submitted, starting at batches[bi][from].
func (uc *CheckUseCase) abandon(groups []*sync.WaitGroup, batches [][]string, bi, from int) {
	uc.stopped.Store(true)
	groups[bi].Add(-(len(batches[bi]) - from))
	for i := bi + 1; i < len(batches); i++ {
		groups[i].Add(-len(batches[i]))
	}
}

// watchBatches logs a progress line each time a batch has fully finished
func (uc *CheckUseCase) watchBatches(batches [][]string, groups []*sync.WaitGroup, start time.Time, done chan<- struct{}) {
	defer close(done)

	total := 0
	for _, batch := range batches {
		total += len(batch)
	}

	boundary := start
	for i, wg := range groups {
		wg.Wait()
		if uc.stopped.Load() {
			continue
		}
		uc.batchesDone.Add(1)

		now := time.Now()
		stats := uc.sink.Stats()
		percent := 0.0
		if total > 0 {
			percent = float64(stats.TotalChecked) / float64(total) * 100
		}
		uc.logger.Info("batch complete",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int64("done", stats.TotalChecked),
			zap.Int("total", total),
			zap.Float64("percent", percent),
			zap.Float64("batch_rate_per_min", entity.PerMinute(int64(len(batches[i])), now.Sub(boundary))),
			zap.Float64("overall_rate_per_min", entity.PerMinute(stats.TotalChecked, now.Sub(start))),
			zap.Int64("available", stats.Available),
			zap.Int64("taken", stats.Taken),
			zap.Int64("on_auction", stats.OnAuction),
			zap.Int64("unavailable", stats.Unavailable),
			zap.Int64("errors", stats.Errors),
		)
		boundary = now
	}
}

// updateMetricsPeriodically periodically notifies observers
func (uc *CheckUseCase) updateMetricsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(uc.config.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.notifyMetricsObservers()
		}
	}
}

// notifyMetricsObservers sends a fresh snapshot to every observer
func (uc *CheckUseCase) notifyMetricsObservers() {
	metrics := uc.GetMetrics()
	for _, observer := range uc.observers {
		observer.OnMetricsUpdate(metrics)
	}
}

// GetMetrics returns the current metrics
func (uc *CheckUseCase) GetMetrics() *entity.Metrics {
	uc.metricsLock.RLock()
	metrics := uc.metrics
	uc.metricsLock.RUnlock()

	metrics.Stats = uc.sink.Stats()
	metrics.InFlight = uc.throttle.InFlight()
	metrics.BatchesDone = int(uc.batchesDone.Load())
	metrics.Paused = uc.gate.Paused()
	metrics.LastUpdateTime = time.Now()
	return &metrics
}

// Gate returns the submission gate
func (uc *CheckUseCase) Gate() *Gate {
	return uc.gate
}

// IsInterrupted reports whether err means the run was stopped by its context
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func partition(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
