package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
)

// Files names the outputs a run wrote
type Files struct {
	Ledger    string
	Available string
	Summary   string
}

// PrintSummary prints the final statistics of a run
func PrintSummary(w io.Writer, summary *entity.Summary, files Files) {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true).
		Padding(1, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")).
		Bold(true)

	divider := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("─", 60))

	row := func(key string, value any) string {
		return fmt.Sprintf("  %s %-18s %s\n", keyStyle.Render("✓"), key, valueStyle.Render(fmt.Sprint(value)))
	}

	title := "Check complete"
	if summary.Interrupted {
		title = "Check interrupted, rerun to resume"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(divider + "\n")
	b.WriteString(row("Processed", summary.TotalProcessed))
	b.WriteString(row("Candidates", summary.Candidates))
	b.WriteString(row("Available", summary.AvailableFound))
	b.WriteString(row("Taken", summary.TakenFound))
	b.WriteString(row("On auction", summary.OnAuctionFound))
	b.WriteString(row("Unavailable", summary.UnavailableFound))
	b.WriteString(row("Errors", summary.Errors))
	b.WriteString(row("Elapsed", fmt.Sprintf("%.1fs", summary.ElapsedSeconds)))
	b.WriteString(row("Rate", fmt.Sprintf("%.1f /min", summary.RatePerMinute)))
	b.WriteString("\n")
	b.WriteString(row("Checked list", files.Ledger))
	b.WriteString(row("Available list", files.Available))
	b.WriteString(row("Summary", files.Summary))
	b.WriteString(divider + "\n")

	fmt.Fprint(w, b.String())
}
