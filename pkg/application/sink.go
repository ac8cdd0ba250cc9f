package application

import (
	"fmt"
	"sync"

	"github.com/usernamecheck/username-checker/pkg/domain/entity"
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
)

// Sink records finished identifiers. The ledger append, the result file
// append and the counter update for one identifier happen under one lock,
// ledger first.
type Sink struct {
	mu     sync.Mutex
	ledger repository.Ledger
	files  map[entity.Status]repository.ResultFile
	stats  entity.RunStats
}

// NewSink creates a sink. Categories missing from files are only counted.
func NewSink(ledger repository.Ledger, files map[entity.Status]repository.ResultFile) *Sink {
	kept := make(map[entity.Status]repository.ResultFile, len(files))
	for status, file := range files {
		if file != nil {
			kept[status] = file
		}
	}
	return &Sink{ledger: ledger, files: kept}
}

// Record persists the outcome of one identifier
func (s *Sink) Record(id string, result entity.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.MarkProcessed(id); err != nil {
		return fmt.Errorf("record %q in ledger: %w", id, err)
	}
	if file, ok := s.files[result.Status]; ok {
		if _, err := file.Append(id); err != nil {
			return fmt.Errorf("record %q as %s: %w", id, result.Status, err)
		}
	}
	s.stats.Record(result.Status)
	return nil
}

// Stats returns a copy of the counters
func (s *Sink) Stats() entity.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
