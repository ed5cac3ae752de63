package tgbotbase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type RedisPropertyStorage struct {
	client *redis.Client
}

var _ PropertyStorage = &RedisPropertyStorage{}

func NewRedisPropertyStorage(pool RedisPool) *RedisPropertyStorage {
	r := &RedisPropertyStorage{client: pool.GetConnByName("property")}
	return r
}

func redisPropertyKey(name string, user UserID, chat ChatID) string {
	if strings.Contains(name, ":") {
		panic(fmt.Sprintf("Property key %q contains forbidden symbol %q", name, ":"))
	}
	return fmt.Sprintf("tg:property:%s:%d:%d", name, user, chat)
}

func (r *RedisPropertyStorage) SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error {
	log.Debugf("Setting property '%s' for user %d chat %d with value: %v", name, user, chat, value)
	return r.client.Set(ctx, redisPropertyKey(name, user, chat), value, 0).Err()
}

func (r *RedisPropertyStorage) SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error {
	return r.SetPropertyForUserInChat(ctx, name, 0, chat, value)
}

func (r *RedisPropertyStorage) GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error) {
	for _, k := range lookupOrder(name, user, chat) {
		val, err := r.client.Get(ctx, redisPropertyKey(k.name, k.user, k.chat)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return "", err
		}
		return val, nil
	}

	log.Debugf("No property '%s' for user %d chat %d, returning null", name, user, chat)
	return "", nil
}
