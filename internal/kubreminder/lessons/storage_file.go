package lessons

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type fileStorage struct {
	path string
}

var _ Storage = &fileStorage{}

// NewFileStorage keeps lessons as a JSON array in the file at path.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (s *fileStorage) Load(ctx context.Context) ([]Lesson, error) {
	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Lesson{}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBlankStorage, s.path)
	}
	lessons := make([]Lesson, 0)
	if err := json.Unmarshal(content, &lessons); err != nil {
		return nil, fmt.Errorf("cannot parse %q: %w", s.path, err)
	}
	return lessons, nil
}

func (s *fileStorage) Save(ctx context.Context, lessons []Lesson) error {
	if lessons == nil {
		lessons = []Lesson{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(lessons); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
