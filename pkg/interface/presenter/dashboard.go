// Package presenter renders a running check for the operator.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
)

const maxRecent = 50

// Dashboard is a TUI dashboard for a running check. p or space toggles
// the submission gate, q stops the run.
type Dashboard struct {
	metrics *entity.Metrics
	recent  []string
	width   int
	height  int
	bar     progress.Model
	toggle  func() bool
	stop    func()
	mu      sync.RWMutex
}

type tickMsg time.Time

// NewDashboard creates a new TUI dashboard. toggle flips the pause state
// and stop cancels the run; either may be nil.
func NewDashboard(toggle func() bool, stop func()) *Dashboard {
	return &Dashboard{
		metrics: &entity.Metrics{},
		bar:     progress.New(progress.WithDefaultGradient()),
		toggle:  toggle,
		stop:    stop,
	}
}

// Init initializes the dashboard
func (d *Dashboard) Init() tea.Cmd {
	return tickCmd()
}

// Update handles dashboard updates
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "p", "P", " ":
			if d.toggle != nil {
				d.toggle()
			}
		case "q", "Q", "ctrl+c":
			if d.stop != nil {
				d.stop()
			}
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.mu.Lock()
		d.width = msg.Width
		d.height = msg.Height
		d.bar.Width = msg.Width - 4
		d.mu.Unlock()
		return d, nil

	case tickMsg:
		return d, tickCmd()
	}

	return d, nil
}

// View renders the dashboard
func (d *Dashboard) View() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.width == 0 {
		return "Initializing..."
	}

	header := d.renderHeader()
	footer := d.renderFooter()
	bar := d.bar.ViewAs(d.metrics.Ratio())

	available := d.height - lipgloss.Height(header) - lipgloss.Height(footer) - lipgloss.Height(bar)
	if available < 0 {
		available = 0
	}
	left := d.width / 2

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		d.renderStats(left, available),
		d.renderRecent(d.width-left, available),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, body, footer)
}

// OnMetricsUpdate implements application.MetricsObserver
func (d *Dashboard) OnMetricsUpdate(metrics *entity.Metrics) {
	d.mu.Lock()
	d.metrics = metrics
	d.mu.Unlock()
}

// OnResult keeps the most recent available and auctioned identifiers
func (d *Dashboard) OnResult(id string, result entity.CheckResult) {
	var line string
	switch result.Status {
	case entity.StatusAvailable:
		line = id
	case entity.StatusOnAuction:
		line = id + " (auction)"
	default:
		return
	}

	d.mu.Lock()
	d.recent = append(d.recent, line)
	if len(d.recent) > maxRecent {
		d.recent = d.recent[len(d.recent)-maxRecent:]
	}
	d.mu.Unlock()
}

func (d *Dashboard) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	timeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#999999"))

	elapsed := time.Duration(0)
	if !d.metrics.StartTime.IsZero() {
		elapsed = time.Since(d.metrics.StartTime).Truncate(time.Second)
	}

	state := "running"
	if d.metrics.Paused {
		state = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")).Bold(true).Render("PAUSED")
	}

	title := titleStyle.Render("Username Checker")
	info := timeStyle.Render(fmt.Sprintf(" Elapsed: %s | Batches: %d / %d | ", elapsed, d.metrics.BatchesDone, d.metrics.Batches))
	return title + info + state
}

func (d *Dashboard) renderStats(width, height int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#874BFD")).
		Padding(1, 2).
		Width(max(width-2, 0)).
		Height(max(height-2, 0))

	s := d.metrics.Stats
	lines := []string{
		"Statistics",
		"",
		fmt.Sprintf("Checked:      %d / %d (%.1f%%)", s.TotalChecked, d.metrics.Total, d.metrics.Ratio()*100),
		fmt.Sprintf("Available:    %d", s.Available),
		fmt.Sprintf("Taken:        %d", s.Taken),
		fmt.Sprintf("On auction:   %d", s.OnAuction),
		fmt.Sprintf("Unavailable:  %d", s.Unavailable),
		fmt.Sprintf("Errors:       %d", s.Errors),
		"",
		fmt.Sprintf("In flight:    %d / %d", d.metrics.InFlight, d.metrics.TotalSlots),
		fmt.Sprintf("Rate:         %.1f /min", d.metrics.RatePerMinute()),
	}

	return style.Render(strings.Join(lines, "\n"))
}

func (d *Dashboard) renderRecent(width, height int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Padding(1, 2).
		Width(max(width-2, 0)).
		Height(max(height-2, 0))

	lines := []string{
		fmt.Sprintf("Recently available (%d)", len(d.recent)),
		"",
	}

	if len(d.recent) == 0 {
		lines = append(lines, "Nothing found yet...")
	} else {
		// border, padding and title take six rows
		show := max(height-6, 0)
		start := 0
		if len(d.recent) > show {
			start = len(d.recent) - show
		}
		for _, id := range d.recent[start:] {
			lines = append(lines, "  • "+id)
		}
	}

	return style.Render(strings.Join(lines, "\n"))
}

func (d *Dashboard) renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#626262")).
		Padding(1, 0)

	return footerStyle.Render("p/space: pause or resume | q: stop after in-flight checks")
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*500, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the dashboard and blocks until the operator quits or ctx is done
func (d *Dashboard) Run(ctx context.Context) error {
	p := tea.NewProgram(d, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
