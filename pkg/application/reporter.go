package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
)

// Reporter writes the end-of-run summary
type Reporter struct {
	writer  repository.SummaryWriter
	sources []string
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewReporter creates a reporter. sources is copied into every summary.
func NewReporter(writer repository.SummaryWriter, sources []string, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		writer:  writer,
		sources: sources,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Finalize builds the summary of a run, logs it and persists it. It runs
// for completed and interrupted runs alike.
func (r *Reporter) Finalize(stats entity.RunStats, elapsed time.Duration, candidates int, interrupted bool) (*entity.Summary, error) {
	sources := r.sources
	if sources == nil {
		sources = []string{}
	}

	summary := &entity.Summary{
		RunID:            r.newID(),
		Timestamp:        r.now().UTC().Format(time.RFC3339),
		TotalProcessed:   stats.TotalChecked,
		AvailableFound:   stats.Available,
		TakenFound:       stats.Taken,
		OnAuctionFound:   stats.OnAuction,
		UnavailableFound: stats.Unavailable,
		Errors:           stats.Errors,
		ElapsedSeconds:   elapsed.Seconds(),
		RatePerMinute:    entity.PerMinute(stats.TotalChecked, elapsed),
		Candidates:       candidates,
		Interrupted:      interrupted,
		Sources:          sources,
	}

	r.logger.Info("run summary",
		zap.String("run_id", summary.RunID),
		zap.Int64("total_processed", summary.TotalProcessed),
		zap.Int64("available", summary.AvailableFound),
		zap.Int64("taken", summary.TakenFound),
		zap.Int64("on_auction", summary.OnAuctionFound),
		zap.Int64("unavailable", summary.UnavailableFound),
		zap.Int64("errors", summary.Errors),
		zap.Float64("elapsed_seconds", summary.ElapsedSeconds),
		zap.Float64("rate_per_minute", summary.RatePerMinute),
		zap.Bool("interrupted", summary.Interrupted),
	)

	if err := r.writer.Write(summary); err != nil {
		return summary, fmt.Errorf("write summary: %w", err)
	}
	return summary, nil
}
