package tgbotbase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type RedisPool interface {
	GetConnByID(dbID int) *redis.Client
	GetConnByName(dbName string) *redis.Client
}

type RedisConfig struct {
	Server string
	Pass   string
}

type RedisPoolImpl struct {
	cfg RedisConfig
	db  map[string]int
}

// NewRedisPool connects to DB 0 and discovers named databases stored under 'db:<name>' keys.
func NewRedisPool(ctx context.Context, cfg RedisConfig) (RedisPool, error) {
	impl := RedisPoolImpl{cfg: cfg,
		db: make(map[string]int, 10)}

	conn := impl.GetConnByID(0)
	defer conn.Close()
	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to redis at %q: %w", cfg.Server, err)
	}

	keys, err := GetAllKeys(ctx, conn, "db:*")
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		dbID, err := conn.Get(ctx, key).Int64()
		if err != nil {
			log.Printf("Could not get db ID for key '%s' due to error: %s; skipping", key, err)
			continue
		}
		dbname := strings.SplitN(key, ":", 2)[1]
		log.Printf("Redis DB '%s' is located at DB id %d", dbname, dbID)
		impl.db[dbname] = int(dbID)
	}

	return &impl, nil
}

func (pool *RedisPoolImpl) GetConnByID(dbID int) *redis.Client {
	opts := redis.Options{Addr: pool.cfg.Server,
		Password: pool.cfg.Pass,
		DB:       dbID}
	return redis.NewClient(&opts)
}

// GetConnByName falls back to DB 0 for names without a 'db:<name>' record.
func (pool *RedisPoolImpl) GetConnByName(dbName string) *redis.Client {
	dbID, found := pool.db[dbName]
	if !found {
		log.WithField("db", dbName).Warn("DB name not known to the pool, using DB 0")
	}
	return pool.GetConnByID(dbID)
}

// GetAllKeys returns unique slice of keys matching the pattern
func GetAllKeys(ctx context.Context, conn *redis.Client, matchPattern string) ([]string, error) {
	result := make([]string, 0)
	var cursor uint64 = 0
	for {
		keys, newcursor, err := conn.Scan(ctx, cursor, matchPattern, 100).Result()
		if err != nil {
			log.Printf("Error happened while scanning with match pattern '%s', error: %s", matchPattern, err)
			return nil, err
		}
		cursor = newcursor
		result = append(result, keys...)
		if cursor == 0 {
			break
		}
	}
	log.Debugf("Scanner '%s' returned %d keys", matchPattern, len(result))
	return uniqueStringSlice(result), nil
}

func uniqueStringSlice(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, elem := range s {
		if _, found := seen[elem]; found {
			continue
		}
		result = append(result, elem)
		seen[elem] = true
	}
	return result
}
