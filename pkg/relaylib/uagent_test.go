package relaylib

import "testing"

func TestUserAgentPoolPick(t *testing.T) {
	p := NewUserAgentPool()
	for i := 0; i < 50; i++ {
		ua := p.Pick()
		if ua == "" {
			t.Fatal("Pick returned an empty string")
		}
		if !p.Contains(ua) {
			t.Fatalf("Pick returned %q, not a pool member", ua)
		}
	}
}

func TestUserAgentPoolVaries(t *testing.T) {
	p := NewUserAgentPool()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[p.Pick()] = true
	}
	// With 200 uniform draws from a 10-entry table, seeing only one
	// entry is effectively impossible.
	if len(seen) < 2 {
		t.Errorf("expected varied picks, got %d distinct", len(seen))
	}
}
