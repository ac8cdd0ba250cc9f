// Package input loads, merges and generates candidate identifier lists.
package input

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Loader loads identifiers from plain-text files, one per line
type Loader struct{}

// NewLoader creates loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load loads identifiers from file ("-" reads stdin)
func (l *Loader) Load(filePath string) ([]string, error) {
	if filePath == "-" {
		return l.Read(os.Stdin)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return l.Read(file)
}

// Read reads identifiers from r, trimming whitespace and skipping blank lines
func (l *Loader) Read(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
