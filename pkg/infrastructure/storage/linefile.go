package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Header is the first line of every ledger and result file
const Header = "Username Checker checkpoint file"

// Options configures how a line file is opened
type Options struct {
	Header string
	Index  Config
	// Sync forces an fsync after every append
	Sync bool
}

// DefaultOptions returns the options used by the checker
func DefaultOptions() Options {
	return Options{Header: Header, Index: DefaultConfig()}
}

// lineFile is an append-only file of one token per line, preceded by a fixed
// header, with an in-memory projection of its distinct lines.
type lineFile struct {
	path  string
	file  *os.File
	index *Index
	sync  bool
	mu    sync.Mutex
}

func openLineFile(path string, opts Options) (*lineFile, error) {
	if opts.Header == "" {
		opts.Header = Header
	}

	if err := ensureHeader(path, opts.Header); err != nil {
		return nil, err
	}

	index := NewIndex(opts.Index)
	end, torn, err := loadLines(path, opts.Header, index)
	if err != nil {
		return nil, err
	}

	// Drop a line left half-written by a crash; its identifier was never recorded.
	if torn {
		if err := os.Truncate(path, end); err != nil {
			return nil, fmt.Errorf("repair %s: %w", path, err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s for append: %w", path, err)
	}

	// The fragment was the header itself.
	if torn && end == 0 {
		if _, err := file.WriteString(opts.Header + "\n"); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header to %s: %w", path, err)
		}
	}

	return &lineFile{
		path:  path,
		file:  file,
		index: index,
		sync:  opts.Sync,
	}, nil
}

// ensureHeader creates the file with its header line when it does not exist
func ensureHeader(path, header string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(header + "\n"); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	return nil
}

// loadLines reads every complete line into index, skipping the header. It
// returns the offset just past the last complete line and whether an
// unterminated line follows it; that fragment is not added.
func loadLines(path, header string, index *Index) (int64, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 64*1024)
	var end int64
	first := true
	for {
		line, err := reader.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return end, len(line) > 0, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("read %s: %w", path, err)
		}
		end += int64(len(line))

		line = bytes.TrimSpace(line)
		if first {
			first = false
			if string(line) == header {
				continue
			}
		}
		if len(line) == 0 {
			continue
		}
		index.Add(string(line))
	}
}

// append writes id as one line unless it is already present
func (f *lineFile) append(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.index.Contains(id) {
		return false, nil
	}

	if _, err := f.file.Write([]byte(id + "\n")); err != nil {
		return false, fmt.Errorf("append to %s: %w", f.path, err)
	}
	if f.sync {
		if err := f.file.Sync(); err != nil {
			return false, fmt.Errorf("sync %s: %w", f.path, err)
		}
	}

	f.index.Add(id)
	return true, nil
}

func (f *lineFile) contains(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index.Contains(id)
}

func (f *lineFile) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index.Len()
}

func (f *lineFile) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	syncErr := f.file.Sync()
	closeErr := f.file.Close()
	f.file = nil

	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
