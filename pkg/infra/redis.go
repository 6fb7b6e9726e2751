package infra

import (
    "context"
    "time"

    "github.com/redis/go-redis/v9"
)

type RedisClient struct {
    Client *redis.Client
}

func NewRedisClient(addr string, password string, db int) (*RedisClient, error) {
    rdb := redis.NewClient(&redis.Options{
        Addr:         addr,
        Password:     password,
        DB:           db,
        DialTimeout:  5 * time.Second,
        ReadTimeout:  3 * time.Second,
        WriteTimeout: 3 * time.Second,
        PoolSize:     10,
    })

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    if err := rdb.Ping(ctx).Err(); err != nil {
        return nil, err
    }

    return &RedisClient{Client: rdb}, nil
}

// AcquireRunLock takes the suite run lock for key. Returns false when
// another run currently holds it. The TTL bounds how long a crashed run
// can keep the keyspace locked.
func (r *RedisClient) AcquireRunLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
    return r.Client.SetNX(ctx, key, owner, ttl).Result()
}

// ReleaseRunLock drops the run lock if this run still owns it.
func (r *RedisClient) ReleaseRunLock(ctx context.Context, key, owner string) error {
    current, err := r.Client.Get(ctx, key).Result()
    if err == redis.Nil {
        return nil
    }
    if err != nil {
        return err
    }
    if current != owner {
        return nil
    }
    return r.Client.Del(ctx, key).Err()
}

func (r *RedisClient) Close() error {
    return r.Client.Close()
}
