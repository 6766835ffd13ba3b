package models

import "time"

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is whole seconds until a slot frees up; zero when allowed.
	RetryAfter int
}

// Key builds the bucket key for a scope and client address.
func Key(scope, ip string) string {
	return "rl:" + scope + ":" + ip
}
