package storage

import (
	"github.com/usernamecheck/username-checker/pkg/domain/repository"
)

// ResultFile implements repository.ResultFile. Identifiers already present
// in the file are never written twice, even across runs.
type ResultFile struct {
	lines *lineFile
}

var _ repository.ResultFile = (*ResultFile)(nil)

// OpenResultFile opens or creates the result file at path
func OpenResultFile(path string, opts Options) (*ResultFile, error) {
	lines, err := openLineFile(path, opts)
	if err != nil {
		return nil, err
	}
	return &ResultFile{lines: lines}, nil
}

// Append adds the identifier if it is not yet listed
func (r *ResultFile) Append(id string) (bool, error) {
	return r.lines.append(id)
}

// Len returns the number of listed identifiers
func (r *ResultFile) Len() int {
	return r.lines.len()
}

// Path returns the backing file path
func (r *ResultFile) Path() string {
	return r.lines.path
}

// Close closes the result file
func (r *ResultFile) Close() error {
	return r.lines.close()
}
