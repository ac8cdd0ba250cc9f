package storage

import (
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
)

// Ledger implements repository.Ledger on top of an append-only line file.
// The file is the source of truth; the set is rebuilt from it on open and
// duplicate lines collapse into one member.
type Ledger struct {
	lines *lineFile
}

var _ repository.Ledger = (*Ledger)(nil)

// OpenLedger opens or creates the ledger at path
func OpenLedger(path string, opts Options) (*Ledger, error) {
	lines, err := openLineFile(path, opts)
	if err != nil {
		return nil, err
	}
	return &Ledger{lines: lines}, nil
}

// Contains checks if an identifier has been processed
func (l *Ledger) Contains(id string) bool {
	return l.lines.contains(id)
}

// MarkProcessed records the identifier as processed
func (l *Ledger) MarkProcessed(id string) error {
	_, err := l.lines.append(id)
	return err
}

// Len returns the number of processed identifiers
func (l *Ledger) Len() int {
	return l.lines.len()
}

// Path returns the backing file path
func (l *Ledger) Path() string {
	return l.lines.path
}

// Close closes the ledger
func (l *Ledger) Close() error {
	return l.lines.close()
}
