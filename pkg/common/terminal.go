package common

import (
	"github.com/olekukonko/ts"
)

// TerminalWidth returns the width of the terminal in columns, or fallback
// when stdout is not a terminal
func TerminalWidth(fallback int) int {
	size, err := ts.GetSize()
	if err != nil || size.Col() <= 0 {
		return fallback
	}
	return size.Col()
}
