package common

import "time"

// Defaults shared by the daemon and the CLI.
const (
	DEF_HOST          = "127.0.0.1"
	DEF_PORT          = 4560
	DEF_POLL_INTERVAL = time.Second
)

// DefaultAddr is the daemon's default TCP submission address.
const DefaultAddr = "127.0.0.1:4560"
