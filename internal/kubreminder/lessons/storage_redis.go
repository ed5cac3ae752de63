package lessons

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
)

const redisLessonsKey = "kubreminder:lessons"

// redisKV is the part of *redis.Client the lesson storage needs
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisStorage struct {
	client redisKV
}

var _ Storage = &redisStorage{}

// NewRedisStorage keeps lessons as one JSON document in the 'lessons' DB of the pool.
func NewRedisStorage(pool tgbotbase.RedisPool) Storage {
	return &redisStorage{
		client: pool.GetConnByName("lessons"),
	}
}

func (s *redisStorage) Load(ctx context.Context) ([]Lesson, error) {
	content, err := s.client.Get(ctx, redisLessonsKey).Bytes()
	if err == redis.Nil {
		return []Lesson{}, nil
	}
	if err != nil {
		return nil, err
	}

	lessons := make([]Lesson, 0)
	if err := json.Unmarshal(content, &lessons); err != nil {
		return nil, fmt.Errorf("cannot parse key %q: %w", redisLessonsKey, err)
	}
	return lessons, nil
}

func (s *redisStorage) Save(ctx context.Context, lessons []Lesson) error {
	if lessons == nil {
		lessons = []Lesson{}
	}
	content, err := json.Marshal(lessons)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisLessonsKey, content, 0).Err()
}
