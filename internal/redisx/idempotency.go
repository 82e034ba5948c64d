package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInFlight = errors.New("a request with this idempotency key is still being processed")

const pending = "pending"

// Idempotency remembers the response of a completed request under a
// client-chosen key so a retry gets the same answer instead of a second
// order.
type Idempotency struct {
	RDB redis.Cmdable
	TTL time.Duration
}

func (i *Idempotency) ttl() time.Duration {
	if i.TTL > 0 {
		return i.TTL
	}
	return TTLIdempotency
}

// Begin claims key. found=true returns the stored response of an earlier
// completed request. ErrInFlight means the first request has not finished.
func (i *Idempotency) Begin(ctx context.Context, key string) (stored []byte, found bool, err error) {
	k := fmt.Sprintf(KeyIdemOrderCreate, key)
	claimed, err := i.RDB.SetNX(ctx, k, pending, i.ttl()).Result()
	if err != nil {
		return nil, false, err
	}
	if claimed {
		return nil, false, nil
	}

	v, err := i.RDB.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// kedaluwarsa di antara SETNX dan GET
		return nil, false, ErrInFlight
	}
	if err != nil {
		return nil, false, err
	}
	if string(v) == pending {
		return nil, false, ErrInFlight
	}
	return v, true, nil
}

// Complete stores the response for replays.
func (i *Idempotency) Complete(ctx context.Context, key string, response []byte) error {
	return i.RDB.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), response, i.ttl()).Err()
}

// Release drops the claim after a failed request so the client can retry.
func (i *Idempotency) Release(ctx context.Context, key string) error {
	return i.RDB.Del(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Err()
}
