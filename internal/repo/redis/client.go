package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Pinger adapts the client for connection diagnostics.
type Pinger struct {
	client *goredis.Client
}

func NewPinger(client *goredis.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return p.client.Ping(ctx).Err()
}
