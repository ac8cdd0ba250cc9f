package input

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/usernamecheck/username-checker/pkg/infrastructure/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "names.txt", "\nalice\n  bob  \n\n\tcarol\n")

	ids, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expected := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("Load = %v, want %v", ids, expected)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader().Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

type setExcluder map[string]bool

func (s setExcluder) Contains(id string) bool { return s[id] }

func TestAggregatorDedupKeepsFirstOccurrence(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.txt", "a\nb\nc\n")
	second := writeFile(t, dir, "b.txt", "c\nd\n")

	agg := NewAggregator(storage.DefaultConfig(), nil).Load([]string{first, second}, nil)

	expected := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(agg.Identifiers, expected) {
		t.Errorf("Identifiers = %v, want %v", agg.Identifiers, expected)
	}
	if agg.Loaded != 5 || agg.Unique != 4 || agg.Excluded != 0 {
		t.Errorf("counters = loaded %d unique %d excluded %d", agg.Loaded, agg.Unique, agg.Excluded)
	}
}

func TestAggregatorExcludesProcessed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "names.txt", "alice\nbob\ncarol\nbob\n")

	agg := NewAggregator(storage.DefaultConfig(), nil).Load([]string{path}, setExcluder{"bob": true})

	expected := []string{"alice", "carol"}
	if !reflect.DeepEqual(agg.Identifiers, expected) {
		t.Errorf("Identifiers = %v, want %v", agg.Identifiers, expected)
	}
	if agg.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1", agg.Excluded)
	}
}

func TestAggregatorSkipsMissingSource(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "x\n")
	missing := filepath.Join(dir, "missing.txt")

	agg := NewAggregator(storage.DefaultConfig(), nil).Load([]string{missing, good}, nil)

	if !reflect.DeepEqual(agg.Identifiers, []string{"x"}) {
		t.Errorf("Identifiers = %v", agg.Identifiers)
	}
	if !reflect.DeepEqual(agg.Failed, []string{missing}) {
		t.Errorf("Failed = %v", agg.Failed)
	}
	if !reflect.DeepEqual(agg.Sources, []string{good}) {
		t.Errorf("Sources = %v", agg.Sources)
	}
}

func TestAggregatorEmpty(t *testing.T) {
	agg := NewAggregator(storage.DefaultConfig(), nil).Load(nil, nil)
	if len(agg.Identifiers) != 0 {
		t.Errorf("Identifiers = %v, want empty", agg.Identifiers)
	}
}

func TestDiscoverSourcesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.txt", "6letter.txt", "usernames.txt", "alpha.txt", "checked_usernames.txt", "notes.md"} {
		writeFile(t, dir, name, "x\n")
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	sources, err := DiscoverSources(dir, DefaultPrimary, DefaultPreferred, []string{"checked_usernames.txt"})
	if err != nil {
		t.Fatalf("DiscoverSources failed: %v", err)
	}

	var names []string
	for _, s := range sources {
		names = append(names, filepath.Base(s))
	}
	expected := []string{"usernames.txt", "6letter.txt", "alpha.txt", "zeta.txt"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("sources = %v, want %v", names, expected)
	}
}

func TestDiscoverSourcesExcludesByPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "available_usernames.txt", "x\n")
	writeFile(t, dir, "usernames.txt", "x\n")

	sources, err := DiscoverSources(dir, DefaultPrimary, nil, []string{filepath.Join(dir, "available_usernames.txt")})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || filepath.Base(sources[0]) != "usernames.txt" {
		t.Errorf("sources = %v", sources)
	}
}

func TestGeneratorAll(t *testing.T) {
	g, err := NewGenerator("ab", 1)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := g.All(&buf, 2)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if n != 4 {
		t.Errorf("count = %d, want 4", n)
	}
	if buf.String() != "aa\nab\nba\nbb\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestGeneratorRandomSortedUnique(t *testing.T) {
	g, err := NewGenerator("", 42)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := g.Random(&buf, 5, 200)
	if err != nil {
		t.Fatalf("Random failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if n != 200 || len(lines) != 200 {
		t.Fatalf("got %d lines, count %d", len(lines), n)
	}
	for i, line := range lines {
		if len(line) != 5 {
			t.Errorf("line %q has wrong length", line)
		}
		if i > 0 && lines[i-1] >= line {
			t.Errorf("lines not strictly sorted at %d: %q >= %q", i, lines[i-1], line)
		}
	}
}

func TestGeneratorRandomDeterministic(t *testing.T) {
	run := func() string {
		g, _ := NewGenerator("abc", 7)
		var buf bytes.Buffer
		if _, err := g.Random(&buf, 3, 5); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if run() != run() {
		t.Error("same seed produced different output")
	}
}

func TestGeneratorErrors(t *testing.T) {
	if _, err := NewGenerator("aa", 1); err == nil {
		t.Error("expected duplicate alphabet error")
	}
	g, _ := NewGenerator("ab", 1)
	var buf bytes.Buffer
	if _, err := g.Random(&buf, 2, 5); err == nil {
		t.Error("expected error when count exceeds space")
	}
	if _, err := g.All(&buf, 0); err == nil {
		t.Error("expected error for zero length")
	}
}
