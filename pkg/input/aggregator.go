package input

import (
	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/domain/repository"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/storage"
)

// Aggregate is the merged, deduplicated and filtered candidate sequence
type Aggregate struct {
	// Identifiers are the candidates left to check, in first-seen order
	Identifiers []string
	// Sources lists the sources that were read successfully
	Sources []string
	// Failed lists the sources that could not be read
	Failed []string
	// Loaded counts every non-blank line read
	Loaded int
	// Unique counts distinct identifiers across all sources
	Unique int
	// Excluded counts distinct identifiers already in the ledger
	Excluded int
}

// Aggregator merges candidate sources
type Aggregator struct {
	loader *Loader
	index  storage.Config
	logger *zap.Logger
}

// NewAggregator creates an aggregator. index sizes the dedup set.
func NewAggregator(index storage.Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		loader: NewLoader(),
		index:  index,
		logger: logger,
	}
}

// Load reads sources in order and keeps each identifier at its first
// occurrence. Identifiers that exclude reports are dropped before any
// scheduling happens. Unreadable sources are logged and skipped; an empty
// result is not an error.
func (a *Aggregator) Load(sources []string, exclude repository.Excluder) *Aggregate {
	agg := &Aggregate{}
	seen := storage.NewIndex(a.index)

	for _, source := range sources {
		ids, err := a.loader.Load(source)
		if err != nil {
			a.logger.Warn("skipping unreadable source", zap.String("source", source), zap.Error(err))
			agg.Failed = append(agg.Failed, source)
			continue
		}

		a.logger.Info("loaded source", zap.String("source", source), zap.Int("identifiers", len(ids)))
		agg.Sources = append(agg.Sources, source)
		agg.Loaded += len(ids)

		for _, id := range ids {
			if !seen.Add(id) {
				continue
			}
			if exclude != nil && exclude.Contains(id) {
				agg.Excluded++
				continue
			}
			agg.Identifiers = append(agg.Identifiers, id)
		}
	}

	agg.Unique = seen.Len()
	a.logger.Info("aggregated candidates",
		zap.Int("loaded", agg.Loaded),
		zap.Int("unique", agg.Unique),
		zap.Int("already_checked", agg.Excluded),
		zap.Int("to_check", len(agg.Identifiers)),
	)
	return agg
}
