package lessons

import "context"

// Storage persists the whole ordered list of lessons at once.
type Storage interface {
	Load(ctx context.Context) ([]Lesson, error)
	Save(ctx context.Context, lessons []Lesson) error
}
