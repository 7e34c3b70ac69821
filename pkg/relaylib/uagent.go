package relaylib

import "math/rand"

// USER_AGENT_KEY is the HTTP header name set when a task requests header
// randomization.
const USER_AGENT_KEY = "User-Agent"

// defaultUserAgents is the fixed browser table used for randomized
// headers.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 YaBrowser/24.1.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 YaBrowser/24.1.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.1 Safari/605.1.15",
}

// UserAgentPool returns User-Agent strings drawn uniformly at random from
// a fixed table. It is stateless and safe for concurrent use.
type UserAgentPool struct {
	agents []string
}

// NewUserAgentPool creates a pool over the default browser table.
func NewUserAgentPool() *UserAgentPool {
	return &UserAgentPool{agents: defaultUserAgents}
}

// Pick returns one User-Agent string uniformly at random.
func (p *UserAgentPool) Pick() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// Contains reports whether ua is a member of the pool's table.
func (p *UserAgentPool) Contains(ua string) bool {
	for _, a := range p.agents {
		if a == ua {
			return true
		}
	}
	return false
}
