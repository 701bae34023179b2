package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// 只有持有者才能释放，防止租约过期后误删他人的锁。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// 续期同样只对持有者生效，ARGV[2] 为毫秒。
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis 是基于 SETNX 的分布式闸门，多副本部署时同一会话只会有一个外呼请求。
// 持有期间由 Do 定期续期，lease 只在进程崩溃、续期停止后才会真正过期。
type Redis struct {
	client *redis.Client
	key    string
	holder string
	lease  time.Duration
}

// NewRedis 创建一个使用 key 作为锁键的闸门。
func NewRedis(client *redis.Client, key string, lease time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    key,
		holder: uuid.NewString(),
		lease:  lease,
	}
}

func (g *Redis) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, g.holder, g.lease).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", g.key, err)
	}
	return ok, nil
}

func (g *Redis) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.key}, g.holder).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis release %s: %w", g.key, err)
	}
	return nil
}

// Renew 在仍持有锁时把过期时间重置为完整租约。
func (g *Redis) Renew(ctx context.Context) (bool, error) {
	n, err := renewScript.Run(ctx, g.client, []string{g.key}, g.holder, g.lease.Milliseconds()).Int64()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("redis renew %s: %w", g.key, err)
	}
	return n == 1, nil
}

// RenewInterval 取租约的三分之一，单次续期失败仍有余量。
func (g *Redis) RenewInterval() time.Duration {
	return g.lease / 3
}

func (g *Redis) State(ctx context.Context) (State, error) {
	n, err := g.client.Exists(ctx, g.key).Result()
	if err != nil {
		return Idle, fmt.Errorf("redis exists %s: %w", g.key, err)
	}
	if n > 0 {
		return Pending, nil
	}
	return Idle, nil
}

// RedisFactory 以 keySpace+sessionID 作为每个会话的锁键。
type RedisFactory struct {
	Client   *redis.Client
	KeySpace string
	Lease    time.Duration
}

func (f RedisFactory) New(sessionID string) Gate {
	return NewRedis(f.Client, f.KeySpace+sessionID, f.Lease)
}
