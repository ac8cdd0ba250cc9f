package repository

import "github.com/usernamecheck/username-checker/pkg/domain/entity"

// Excluder answers membership for identifiers that must not be scheduled
type Excluder interface {
	// Contains reports whether the identifier was already processed
	Contains(id string) bool
}

// Ledger is the durable record of processed identifiers
type Ledger interface {
	Excluder
	// MarkProcessed appends the identifier to the ledger
	MarkProcessed(id string) error
	// Len returns the number of distinct processed identifiers
	Len() int
	// Close flushes and closes the backing file
	Close() error
}

// ResultFile is an append-only list of identifiers for one category
type ResultFile interface {
	// Append adds the identifier unless already present; it reports whether a line was written
	Append(id string) (bool, error)
	// Close flushes and closes the backing file
	Close() error
}

// SummaryWriter persists the end-of-run summary
type SummaryWriter interface {
	// Write replaces any previous summary
	Write(summary *entity.Summary) error
}
