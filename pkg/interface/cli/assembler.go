package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/application"
	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/classifier"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/http"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/storage"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/throttle"
	"github.com/usernamecheck/username-checker/pkg/input"
	"github.com/usernamecheck/username-checker/pkg/interface/presenter"
)

// Assembler assembles all components of a check run
type Assembler struct {
	config *CheckCommand
	logger *zap.Logger
}

// NewAssembler creates a new assembler
func NewAssembler(config *CheckCommand, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{config: config, logger: logger}
}

// CheckRun is a fully wired check, ready to execute
type CheckRun struct {
	UseCase   *application.CheckUseCase
	Reporter  *application.Reporter
	Gate      *application.Gate
	Aggregate *input.Aggregate
	Files     presenter.Files

	ledger  *storage.Ledger
	results []*storage.ResultFile
}

// Close closes every output file
func (r *CheckRun) Close() error {
	var errs []error
	for _, f := range r.results {
		errs = append(errs, f.Close())
	}
	if r.ledger != nil {
		errs = append(errs, r.ledger.Close())
	}
	return errors.Join(errs...)
}

// path resolves an output name against the working directory
func (a *Assembler) path(name string) string {
	if name == "" || name == "-" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(a.config.Dir, name)
}

// Assemble opens the output files, loads the candidates and wires the use
// case. Failing to open the ledger or a result file is fatal.
func (a *Assembler) Assemble() (*CheckRun, error) {
	opts := a.config.storageOptions()
	run := &CheckRun{
		Files: presenter.Files{
			Ledger:    a.path(a.config.Checked),
			Available: a.path(a.config.Available),
			Summary:   a.path(a.config.Summary),
		},
	}

	ledger, err := storage.OpenLedger(run.Files.Ledger, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	run.ledger = ledger
	a.logger.Info("opened checkpoint file", zap.String("path", ledger.Path()), zap.Int("processed", ledger.Len()))

	files := map[entity.Status]repository.ResultFile{}
	for status, name := range map[entity.Status]string{
		entity.StatusAvailable:   a.config.Available,
		entity.StatusUnavailable: a.config.Unused,
		entity.StatusOnAuction:   a.config.Auction,
	} {
		if name == "" {
			continue
		}
		file, err := storage.OpenResultFile(a.path(name), opts)
		if err != nil {
			run.Close()
			return nil, fmt.Errorf("failed to open %s file: %w", status, err)
		}
		run.results = append(run.results, file)
		files[status] = file
	}

	sources, err := a.sources()
	if err != nil {
		run.Close()
		return nil, fmt.Errorf("failed to find candidate lists: %w", err)
	}
	if len(sources) == 0 {
		a.logger.Warn("no candidate lists found", zap.String("dir", a.config.Dir))
	}
	run.Aggregate = input.NewAggregator(opts.Index, a.logger).Load(sources, ledger)

	prober := http.NewProber(a.config.proberConfig())
	checker := application.NewProbeChecker(prober, classifier.New(classifier.DefaultMarkers()))
	slots := throttle.New(throttle.Config{
		MaxConcurrency:    a.config.Concurrency,
		Pacing:            a.config.Delay,
		RequestsPerSecond: a.config.RPS,
		Burst:             a.config.Burst,
	})

	run.Gate = application.NewGate()
	run.UseCase = application.NewCheckUseCase(
		application.Config{
			BatchSize:       a.config.BatchSize,
			MetricsInterval: 500 * time.Millisecond,
		},
		checker,
		slots,
		run.Gate,
		application.NewSink(ledger, files),
		a.logger,
	)
	run.Reporter = application.NewReporter(storage.NewSummaryWriter(run.Files.Summary), run.Aggregate.Sources, a.logger)

	return run, nil
}

// sources returns the explicit inputs, or discovers lists in Dir
func (a *Assembler) sources() ([]string, error) {
	if len(a.config.Inputs) > 0 {
		return a.config.Inputs, nil
	}

	exclude := []string{a.config.Checked, a.config.Available, a.config.Unused, a.config.Auction, a.config.Summary}
	if a.config.log != nil && a.config.log.LogFile != "" {
		exclude = append(exclude, a.config.log.LogFile)
	}
	return input.DiscoverSources(a.config.Dir, input.DefaultPrimary, input.DefaultPreferred, exclude)
}
