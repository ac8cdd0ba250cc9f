package application

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/storage"
	"github.com/usernamecheck/username-checker/pkg/infrastructure/throttle"
)

// memLedger is an in-memory repository.Ledger
type memLedger struct {
	mu    sync.Mutex
	order []string
	set   map[string]bool
	err   error
}

func newMemLedger() *memLedger { return &memLedger{set: make(map[string]bool)} }

func (m *memLedger) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[id]
}

func (m *memLedger) MarkProcessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if !m.set[id] {
		m.set[id] = true
		m.order = append(m.order, id)
	}
	return nil
}

func (m *memLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *memLedger) Close() error { return nil }

// memFile is an in-memory repository.ResultFile
type memFile struct {
	memLedger
}

func newMemFile() *memFile { return &memFile{memLedger{set: make(map[string]bool)}} }

func (m *memFile) Append(id string) (bool, error) {
	if m.Contains(id) {
		return false, nil
	}
	return true, m.MarkProcessed(id)
}

// stubChecker answers from a table and tracks peak concurrency
type stubChecker struct {
	results map[string]entity.CheckResult
	delay   time.Duration
	calls   atomic.Int64
	active  atomic.Int64
	peak    atomic.Int64
}

func (s *stubChecker) Check(ctx context.Context, id string) entity.CheckResult {
	s.calls.Add(1)
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if r, ok := s.results[id]; ok {
		return r
	}
	return entity.Taken()
}

type recordingObserver struct {
	mu      sync.Mutex
	results map[string]entity.CheckResult
	updates int
}

func (o *recordingObserver) OnMetricsUpdate(*entity.Metrics) {
	o.mu.Lock()
	o.updates++
	o.mu.Unlock()
}

func (o *recordingObserver) OnResult(id string, result entity.CheckResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.results == nil {
		o.results = make(map[string]entity.CheckResult)
	}
	o.results[id] = result
}

func newUseCase(checker *stubChecker, ledger repository.Ledger, available repository.ResultFile, concurrency int, logger *zap.Logger) *CheckUseCase {
	sink := NewSink(ledger, map[entity.Status]repository.ResultFile{entity.StatusAvailable: available})
	th := throttle.New(throttle.Config{MaxConcurrency: concurrency})
	return NewCheckUseCase(Config{BatchSize: 2, MetricsInterval: 10 * time.Millisecond}, checker, th, NewGate(), sink, logger)
}

func TestExecuteEndToEnd(t *testing.T) {
	checker := &stubChecker{results: map[string]entity.CheckResult{
		"alice": entity.Available(),
		"bob":   entity.Taken(),
		"carol": entity.TransientError("timeout"),
	}}
	ledger := newMemLedger()
	available := newMemFile()
	obs := &recordingObserver{}

	core, logs := observer.New(zap.InfoLevel)
	uc := newUseCase(checker, ledger, available, 2, zap.New(core))
	uc.RegisterMetricsObserver(obs)

	stats, err := uc.Execute(context.Background(), []string{"alice", "bob", "carol"})
	require.NoError(t, err)

	assert.Equal(t, entity.RunStats{TotalChecked: 3, Available: 1, Taken: 1, Errors: 1}, stats)
	assert.Equal(t, []string{"alice"}, available.order)

	processed := append([]string(nil), ledger.order...)
	sort.Strings(processed)
	assert.Equal(t, []string{"alice", "bob", "carol"}, processed)

	assert.Len(t, obs.results, 3)
	assert.Equal(t, entity.StatusTransientError, obs.results["carol"].Status)
	assert.Positive(t, obs.updates)

	assert.Equal(t, 2, logs.FilterMessage("batch complete").Len())
	warns := logs.FilterMessage("checked").FilterLevelExact(zap.WarnLevel)
	require.Equal(t, 1, warns.Len())
	assert.Equal(t, "carol", warns.All()[0].ContextMap()["id"])
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	checker := &stubChecker{delay: 5 * time.Millisecond}
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = "id" + string(rune('A'+i))
	}

	uc := newUseCase(checker, newMemLedger(), newMemFile(), 3, nil)
	stats, err := uc.Execute(context.Background(), ids)
	require.NoError(t, err)

	assert.EqualValues(t, 50, stats.TotalChecked)
	assert.EqualValues(t, 50, checker.calls.Load())
	assert.LessOrEqual(t, checker.peak.Load(), int64(3))
}

func TestExecuteResumeSkipsProcessed(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "checked.txt")
	ids := []string{"alice", "bob", "carol"}

	first := &stubChecker{results: map[string]entity.CheckResult{"alice": entity.Available()}}
	ledger, err := storage.OpenLedger(ledgerPath, storage.DefaultOptions())
	require.NoError(t, err)
	_, err = newUseCase(first, ledger, newMemFile(), 2, nil).Execute(context.Background(), ids[:2])
	require.NoError(t, err)
	require.NoError(t, ledger.Close())

	ledger, err = storage.OpenLedger(ledgerPath, storage.DefaultOptions())
	require.NoError(t, err)
	defer ledger.Close()

	var remaining []string
	for _, id := range ids {
		if !ledger.Contains(id) {
			remaining = append(remaining, id)
		}
	}
	require.Equal(t, []string{"carol"}, remaining)

	second := &stubChecker{}
	stats, err := newUseCase(second, ledger, newMemFile(), 2, nil).Execute(context.Background(), remaining)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalChecked)
	assert.EqualValues(t, 1, second.calls.Load())
	assert.Equal(t, 3, ledger.Len())
}

func TestExecuteEmpty(t *testing.T) {
	checker := &stubChecker{}
	stats, err := newUseCase(checker, newMemLedger(), newMemFile(), 2, nil).Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalChecked)
	assert.Zero(t, checker.calls.Load())
}

func TestExecuteSinkFailureIsFatal(t *testing.T) {
	ledger := newMemLedger()
	ledger.err = errors.New("disk full")
	checker := &stubChecker{}

	_, err := newUseCase(checker, ledger, newMemFile(), 1, nil).Execute(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.Less(t, checker.calls.Load(), int64(5))
}

func TestExecuteCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := &stubChecker{}
	ledger := newMemLedger()
	_, err := newUseCase(checker, ledger, newMemFile(), 2, nil).Execute(ctx, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
	assert.Zero(t, checker.calls.Load())
	assert.Zero(t, ledger.Len())
}

func TestExecuteCancelRecordsInFlight(t *testing.T) {
	checker := &stubChecker{delay: 50 * time.Millisecond}
	ledger := newMemLedger()
	uc := newUseCase(checker, ledger, newMemFile(), 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	ids := []string{"a", "b", "c", "d", "e", "f"}
	stats, err := uc.Execute(ctx, ids)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, checker.calls.Load(), stats.TotalChecked)
	assert.Equal(t, int(stats.TotalChecked), ledger.Len())
	assert.Less(t, ledger.Len(), len(ids))
}

func TestExecutePausedGateHoldsSubmission(t *testing.T) {
	checker := &stubChecker{}
	uc := newUseCase(checker, newMemLedger(), newMemFile(), 2, nil)
	uc.Gate().Pause()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := uc.Execute(context.Background(), []string{"a", "b"})
		assert.NoError(t, err)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, checker.calls.Load())

	uc.Gate().Resume()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish after resume")
	}
	assert.EqualValues(t, 2, checker.calls.Load())
}

func TestGate(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Wait(context.Background()))

	assert.True(t, g.Toggle())
	assert.True(t, g.Paused())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)

	released := make(chan error, 1)
	go func() { released <- g.Wait(context.Background()) }()
	assert.False(t, g.Toggle())
	assert.NoError(t, <-released)

	g.Resume()
	g.Pause()
	g.Pause()
	assert.True(t, g.Paused())
}

func TestSinkWritesLedgerFirst(t *testing.T) {
	ledger := newMemLedger()
	available := newMemFile()
	unused := newMemFile()
	sink := NewSink(ledger, map[entity.Status]repository.ResultFile{
		entity.StatusAvailable:   available,
		entity.StatusUnavailable: unused,
		entity.StatusOnAuction:   nil,
	})

	require.NoError(t, sink.Record("a", entity.Available()))
	require.NoError(t, sink.Record("b", entity.Unavailable()))
	require.NoError(t, sink.Record("c", entity.OnAuction()))
	require.NoError(t, sink.Record("d", entity.ProtocolError(429)))

	assert.Equal(t, []string{"a", "b", "c", "d"}, ledger.order)
	assert.Equal(t, []string{"a"}, available.order)
	assert.Equal(t, []string{"b"}, unused.order)
	assert.Equal(t, entity.RunStats{TotalChecked: 4, Available: 1, Unavailable: 1, OnAuction: 1, Errors: 1}, sink.Stats())

	ledger.err = errors.New("read-only")
	err := sink.Record("e", entity.Available())
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, available.order)
	assert.EqualValues(t, 4, sink.Stats().TotalChecked)
}

type captureWriter struct {
	summary *entity.Summary
	err     error
}

func (c *captureWriter) Write(s *entity.Summary) error {
	c.summary = s
	return c.err
}

func TestReporterFinalize(t *testing.T) {
	w := &captureWriter{}
	r := NewReporter(w, []string{"usernames.txt"}, nil)
	r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	r.newID = func() string { return "run-1" }

	stats := entity.RunStats{TotalChecked: 120, Available: 2, Taken: 100, Unavailable: 3, OnAuction: 5, Errors: 10}
	summary, err := r.Finalize(stats, 2*time.Minute, 200, true)
	require.NoError(t, err)

	assert.Same(t, summary, w.summary)
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, "2024-01-02T03:04:05Z", summary.Timestamp)
	assert.EqualValues(t, 120, summary.TotalProcessed)
	assert.EqualValues(t, 2, summary.AvailableFound)
	assert.EqualValues(t, 100, summary.TakenFound)
	assert.EqualValues(t, 5, summary.OnAuctionFound)
	assert.EqualValues(t, 3, summary.UnavailableFound)
	assert.EqualValues(t, 10, summary.Errors)
	assert.InDelta(t, 120.0, summary.ElapsedSeconds, 1e-9)
	assert.InDelta(t, 60.0, summary.RatePerMinute, 1e-9)
	assert.Equal(t, 200, summary.Candidates)
	assert.True(t, summary.Interrupted)
	assert.Equal(t, []string{"usernames.txt"}, summary.Sources)
}

func TestReporterWritesToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	r := NewReporter(storage.NewSummaryWriter(path), nil, nil)

	_, err := r.Finalize(entity.RunStats{}, 0, 0, false)
	require.NoError(t, err)

	loaded, err := storage.ReadSummary(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.RunID)
	assert.Zero(t, loaded.RatePerMinute)
	assert.Equal(t, []string{}, loaded.Sources)
}

func TestReporterWriteError(t *testing.T) {
	r := NewReporter(&captureWriter{err: errors.New("nope")}, nil, nil)
	_, err := r.Finalize(entity.RunStats{}, time.Second, 0, false)
	assert.ErrorContains(t, err, "write summary")
}

func TestPartition(t *testing.T) {
	assert.Nil(t, partition(nil, 3))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, partition([]string{"a", "b", "c"}, 2))
}
