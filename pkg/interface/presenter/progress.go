package presenter

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/usernamecheck/username-checker/pkg/common"
	"github.com/usernamecheck/username-checker/pkg/domain/entity"
)

// ProgressBar is a single mpb bar advanced once per recorded identifier
type ProgressBar struct {
	progress *mpb.Progress
	bar      *mpb.Bar
}

// NewProgressBar creates a bar for total identifiers written to out
func NewProgressBar(total int, out io.Writer) *ProgressBar {
	p := mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(common.TerminalWidth(120)/3),
		mpb.WithRefreshRate(200*time.Millisecond),
		mpb.WithAutoRefresh(),
	)

	bar := p.AddBar(int64(total),
		mpb.BarOptional(mpb.BarRemoveOnComplete(), false),
		mpb.PrependDecorators(
			decor.Name("checking", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("[%d / %d]", decor.WCSyncWidth),
			decor.Percentage(decor.WCSyncSpace),
			decor.AverageSpeed(0, "%.1f/s", decor.WCSyncSpace),
			decor.OnComplete(
				decor.AverageETA(decor.ET_STYLE_GO, decor.WCSyncSpace), "done",
			),
		),
	)

	return &ProgressBar{progress: p, bar: bar}
}

// OnResult implements application.MetricsObserver
func (b *ProgressBar) OnResult(string, entity.CheckResult) {
	b.bar.Increment()
}

// OnMetricsUpdate implements application.MetricsObserver
func (b *ProgressBar) OnMetricsUpdate(*entity.Metrics) {}

// Current returns the number of identifiers counted so far
func (b *ProgressBar) Current() int64 {
	return b.bar.Current()
}

// Wait stops the bar, leaving it where an interrupted run left it
func (b *ProgressBar) Wait() {
	if !b.bar.Completed() {
		b.bar.Abort(false)
	}
	b.progress.Wait()
}
