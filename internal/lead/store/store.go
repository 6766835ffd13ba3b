// Package store persists captured leads. Every backend is append-only and
// lists newest first.
package store

func clampLimit(limit, total int) int {
	if limit <= 0 || limit > total {
		return total
	}
	return limit
}
