package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{Idempotency-Key} -> "pending" | response JSON
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Fixed window rate limit: ratelimit:{client}:{window index} -> counter
	KeyRateLimit = "ratelimit:%s:%d"
)

var TTLIdempotency = 24 * time.Hour
