package input

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
)

// DefaultAlphabet is a-z followed by A-Z
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator writes candidate identifier lists
type Generator struct {
	alphabet []rune
	rnd      *rand.Rand
}

// NewGenerator creates a generator over alphabet, seeded for random subsets
func NewGenerator(alphabet string, seed int64) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	runes := []rune(alphabet)
	seen := make(map[rune]bool, len(runes))
	for _, r := range runes {
		if seen[r] {
			return nil, fmt.Errorf("alphabet has duplicate character %q", r)
		}
		seen[r] = true
	}
	return &Generator{alphabet: runes, rnd: rand.New(rand.NewSource(seed))}, nil
}

// Space returns how many identifiers of the given length exist
func (g *Generator) Space(length int) float64 {
	return math.Pow(float64(len(g.alphabet)), float64(length))
}

// All writes every combination of the given length in alphabet order
func (g *Generator) All(w io.Writer, length int) (int64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("length must be > 0, got %d", length)
	}

	bw := bufio.NewWriter(w)
	digits := make([]int, length)
	buf := make([]rune, length)
	var count int64

	for {
		for i, d := range digits {
			buf[i] = g.alphabet[d]
		}
		if _, err := bw.WriteString(string(buf) + "\n"); err != nil {
			return count, err
		}
		count++

		// Odometer increment, rightmost digit fastest.
		i := length - 1
		for ; i >= 0; i-- {
			digits[i]++
			if digits[i] < len(g.alphabet) {
				break
			}
			digits[i] = 0
		}
		if i < 0 {
			break
		}
	}

	return count, bw.Flush()
}

// Random writes n distinct random combinations of the given length, sorted
func (g *Generator) Random(w io.Writer, length, n int) (int64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("length must be > 0, got %d", length)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be > 0, got %d", n)
	}
	if float64(n) > g.Space(length) {
		return 0, fmt.Errorf("count %d exceeds the %0.f combinations of length %d", n, g.Space(length), length)
	}

	set := make(map[string]struct{}, n)
	buf := make([]rune, length)
	for len(set) < n {
		for i := range buf {
			buf[i] = g.alphabet[g.rnd.Intn(len(g.alphabet))]
		}
		set[string(buf)] = struct{}{}
	}

	ids := make([]string, 0, n)
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := bw.WriteString(id + "\n"); err != nil {
			return 0, err
		}
	}
	return int64(len(ids)), bw.Flush()
}
