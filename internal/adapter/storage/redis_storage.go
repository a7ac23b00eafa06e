package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const storageKeyPrefix = "localstorage:"

var ErrStorageUnavailable = errors.New("storage unavailable")

// setIfChangedScript writes the value only when it differs from the stored one.
var setIfChangedScript = redis.NewScript(`
local key = KEYS[1]
local value = ARGV[1]

local current = redis.call('GET', key)
if current == value then
	return 0
end

redis.call('SET', key, value)
return 1
`)

type RedisStorage struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
}

func NewRedisStorage(client *redis.Client, log logrus.FieldLogger) *RedisStorage {
	st := gobreaker.Settings{
		Name:        "RedisStorage",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("circuit breaker %s changed from %s to %s", name, from, to)
		},
	}

	return &RedisStorage{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := r.execute(func() (interface{}, error) {
		res, err := r.client.Get(ctx, storageKeyPrefix+key).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "get %s", key)
	}
	if val == nil {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (r *RedisStorage) SetItem(ctx context.Context, key, value string) (bool, error) {
	val, err := r.execute(func() (interface{}, error) {
		return setIfChangedScript.Run(ctx, r.client, []string{storageKeyPrefix + key}, value).Int()
	})
	if err != nil {
		return false, errors.Wrapf(err, "set %s", key)
	}
	return val.(int) == 1, nil
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) (bool, error) {
	val, err := r.execute(func() (interface{}, error) {
		return r.client.Del(ctx, storageKeyPrefix+key).Result()
	})
	if err != nil {
		return false, errors.Wrapf(err, "remove %s", key)
	}
	return val.(int64) > 0, nil
}

func (r *RedisStorage) execute(fn func() (interface{}, error)) (interface{}, error) {
	val, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	return val, err
}
