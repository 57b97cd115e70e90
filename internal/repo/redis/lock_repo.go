package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const lockPrefix = "purchase_lock:"

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock re-acquired by another purchase is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type LockRepo struct {
	client *goredis.Client
}

func NewLockRepo(client *goredis.Client) *LockRepo {
	return &LockRepo{client: client}
}

// Acquire takes the named lock for ttl; false means another holder has it.
func (r *LockRepo) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" || token == "" || ttl <= 0 {
		return false, fmt.Errorf("invalid lock payload")
	}

	ok, err := r.client.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ok, nil
}

func (r *LockRepo) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" || token == "" {
		return fmt.Errorf("invalid lock payload")
	}

	if err := releaseScript.Run(ctx, r.client, []string{lockPrefix + key}, token).Err(); err != nil && err != goredis.Nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
