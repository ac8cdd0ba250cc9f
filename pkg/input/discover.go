package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPrimary is checked before any other source
const DefaultPrimary = "usernames.txt"

// DefaultPreferred are read right after the primary file
var DefaultPreferred = []string{"5letter.txt", "6letter.txt", "7letter.txt"}

// DiscoverSources lists candidate files in dir: primary first, then the
// preferred files, then every other *.txt in lexical order. Files named in
// exclude (the checker's own outputs) are never returned.
func DiscoverSources(dir, primary string, preferred, exclude []string) ([]string, error) {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		if name == "" {
			continue
		}
		skip[filepath.Clean(name)] = true
		skip[filepath.Base(name)] = true
	}

	var sources []string
	listed := make(map[string]bool)
	add := func(name string) {
		path := filepath.Join(dir, name)
		if listed[path] || skip[name] || skip[filepath.Clean(path)] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		listed[path] = true
		sources = append(sources, path)
	}

	if primary != "" {
		add(primary)
	}
	for _, name := range preferred {
		add(name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return sources, err
	}
	var rest []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		rest = append(rest, entry.Name())
	}
	sort.Strings(rest)
	for _, name := range rest {
		add(name)
	}

	return sources, nil
}
