package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/usernamecheck/username-checker/pkg/application"
	"github.com/usernamecheck/username-checker/pkg/common"
	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/metrics"
	"github.com/usernamecheck/username-checker/pkg/input"
	"github.com/usernamecheck/username-checker/pkg/interface/presenter"
	"github.com/usernamecheck/username-checker/pkg/logging"
)

// dashboardLogFile receives logs while the dashboard owns the terminal
const dashboardLogFile = "username-checker.log"

// Execute runs a check until every candidate is processed or the process
// is interrupted. The summary is written in both cases.
func (c *CheckCommand) Execute(_ []string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	logOpts := LogOptions{LogLevel: "info"}
	if c.log != nil {
		logOpts = *c.log
	}
	if c.Dashboard && logOpts.LogFile == "" {
		logOpts.LogFile = dashboardLogFile
	}
	logger, err := logging.New(logOpts.Logging())
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.run(ctx, logger, os.Stdout)
}

func (c *CheckCommand) run(ctx context.Context, logger *zap.Logger, out io.Writer) error {
	run, err := NewAssembler(c, logger).Assemble()
	if err != nil {
		return err
	}
	defer func() {
		if err := run.Close(); err != nil {
			logger.Error("failed to close output files", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.MetricsAddr != "" {
		exporter := metrics.NewExporter(logger)
		run.UseCase.RegisterMetricsObserver(exporter)
		go func() {
			if err := exporter.Serve(ctx, c.MetricsAddr); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	ids := run.Aggregate.Identifiers
	start := time.Now()

	var (
		stats   entity.RunStats
		execErr error
	)
	switch {
	case c.Dashboard:
		stats, execErr = c.runWithDashboard(ctx, cancel, run, ids, logger)
	case c.Progress:
		bar := presenter.NewProgressBar(len(ids), os.Stderr)
		run.UseCase.RegisterMetricsObserver(bar)
		stats, execErr = run.UseCase.Execute(ctx, ids)
		bar.Wait()
	default:
		stats, execErr = run.UseCase.Execute(ctx, ids)
	}

	interrupted := application.IsInterrupted(execErr)
	summary, err := run.Reporter.Finalize(stats, time.Since(start), len(ids), interrupted || execErr != nil)
	if err != nil {
		logger.Error("failed to write summary", zap.Error(err))
	}
	presenter.PrintSummary(out, summary, run.Files)

	if execErr != nil && !interrupted {
		return execErr
	}
	return err
}

// runWithDashboard executes the use case behind the TUI. Quitting the
// dashboard cancels the run; the run finishing closes the dashboard.
func (c *CheckCommand) runWithDashboard(ctx context.Context, cancel context.CancelFunc, run *CheckRun, ids []string, logger *zap.Logger) (entity.RunStats, error) {
	dashboard := presenter.NewDashboard(run.Gate.Toggle, cancel)
	run.UseCase.RegisterMetricsObserver(dashboard)

	uiCtx, closeUI := context.WithCancel(context.Background())
	defer closeUI()

	var (
		stats   entity.RunStats
		execErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, execErr = run.UseCase.Execute(ctx, ids)
		closeUI()
	}()

	if err := dashboard.Run(uiCtx); err != nil {
		logger.Error("dashboard failed", zap.Error(err))
		cancel()
	}
	<-done
	return stats, execErr
}

// Execute writes a candidate list
func (g *GenerateCommand) Execute(_ []string) error {
	if err := g.Validate(); err != nil {
		return err
	}

	logOpts := LogOptions{LogLevel: "info"}
	if g.log != nil {
		logOpts = *g.log
	}
	logger, err := logging.New(logOpts.Logging())
	if err != nil {
		return err
	}
	defer logger.Sync()

	return g.generate(logger, os.Stdout)
}

func (g *GenerateCommand) generate(logger *zap.Logger, stdout io.Writer) error {
	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen, err := input.NewGenerator(g.Alphabet, seed)
	if err != nil {
		return err
	}

	path := g.outputPath()
	w := stdout
	if path != "-" {
		flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if g.Force {
			flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		file, err := os.OpenFile(path, flag, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				return fmt.Errorf("%s exists, use --force to overwrite", path)
			}
			return err
		}
		defer file.Close()
		w = file
	}

	var n int64
	if g.Count == 0 {
		n, err = gen.All(w, g.Length)
	} else {
		n, err = gen.Random(w, g.Length, g.Count)
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	logger.Info("generated candidates",
		zap.String("output", path),
		zap.Int64("count", n),
		zap.Int("length", g.Length),
		zap.Int64("seed", seed),
	)
	return nil
}

// Execute prints version information
func (v *VersionCommand) Execute(_ []string) error {
	fmt.Println(common.PV.String())
	return nil
}
