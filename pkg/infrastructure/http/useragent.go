package http

import (
	"math/rand"
	"sync"
)

// UserAgent provides browser user agents
type UserAgent struct {
	agents []string
	mu     sync.Mutex
	rnd    *rand.Rand
}

// NewUserAgent creates an agent provider. A single fixed agent disables rotation.
func NewUserAgent(fixed string, seed int64) *UserAgent {
	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	}
	if fixed != "" {
		agents = []string{fixed}
	}
	return &UserAgent{
		agents: agents,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Random returns random agent
func (ua *UserAgent) Random() string {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if len(ua.agents) == 0 {
		return ""
	}
	return ua.agents[ua.rnd.Intn(len(ua.agents))]
}
