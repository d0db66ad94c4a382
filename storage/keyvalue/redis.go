package keyvalue

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/Youngger9765/duotopia-sub010/core"
)

const redisKeyPrefix = "duotopia:"

// redisStore keeps keys in a shared Redis instance; used on lab/kiosk
// machines where the teacher history should follow the room, not the box.
type redisStore struct {
	client *redis.Client
	ctx    context.Context // base context
}

var _ core.KeyValueStore = (*redisStore)(nil)

func NewRedisStore(addr string) (core.KeyValueStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &redisStore{client: client, ctx: ctx}, nil
}

func (s *redisStore) Get(key string) ([]byte, error) {
	raw, err := s.client.Get(s.ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis GET")
	}
	return raw, nil
}

func (s *redisStore) Set(key string, value []byte) error {
	return errors.Wrap(s.client.Set(s.ctx, redisKeyPrefix+key, value, 0).Err(), "redis SET")
}
