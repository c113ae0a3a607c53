package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultQuoteCacheTTL is how long a quoted price is reused
	DefaultQuoteCacheTTL = 15 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a key while its first request runs
	IdempotencyPending = "processing"

	quotePriceCacheKey = "quote:price"
)

// IsIdempotencyPending reports whether a stored idempotency value is the
// in-flight marker.
func IsIdempotencyPending(value []byte) bool {
	return string(value) == IdempotencyPending
}
