package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
)

// SummaryWriter implements repository.SummaryWriter as a JSON file
type SummaryWriter struct {
	path string
}

var _ repository.SummaryWriter = (*SummaryWriter)(nil)

// NewSummaryWriter creates a summary writer (use "-" for stdout)
func NewSummaryWriter(path string) *SummaryWriter {
	return &SummaryWriter{path: path}
}

// Write replaces the summary file. The record is written to a temporary
// file in the same directory and renamed over the old one.
func (w *SummaryWriter) Write(summary *entity.Summary) error {
	if w.path == "-" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		tmp.Close()
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close summary: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}

// ReadSummary loads a summary written by SummaryWriter
func ReadSummary(path string) (*entity.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var summary entity.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}
