package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSaleGuardKey = "warehouse:sale:in-progress"

// releaseGuardScript deletes the guard only if this holder set it.
var releaseGuardScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisSaleGuard shares the sale-in-progress flag between engine processes
// serving the same warehouse.
type RedisSaleGuard struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRedisSaleGuard builds a guard on key. token identifies this holder; a
// zero ttl means the flag never expires on its own.
func NewRedisSaleGuard(client *redis.Client, key, token string, ttl time.Duration) *RedisSaleGuard {
	if key == "" {
		key = defaultSaleGuardKey
	}
	return &RedisSaleGuard{client: client, key: key, token: token, ttl: ttl}
}

func (r *RedisSaleGuard) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key, r.token, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisSaleGuard) Release(ctx context.Context) error {
	return releaseGuardScript.Run(ctx, r.client, []string{r.key}, r.token).Err()
}

func (r *RedisSaleGuard) Held(ctx context.Context) (bool, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
