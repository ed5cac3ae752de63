package lessons

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store is the working copy of the lesson list. Every mutation is persisted
// to the storage right away; a failed save is logged and the in-memory list is kept.
type Store struct {
	mu      sync.Mutex
	storage Storage
	loc     *time.Location
	lessons []Lesson
}

// NewStore loads lessons from storage. Absent, blank or broken data results in an empty store.
func NewStore(ctx context.Context, storage Storage, loc *time.Location) *Store {
	s := &Store{
		storage: storage,
		loc:     loc,
		lessons: make([]Lesson, 0),
	}
	err := s.Reload(ctx)
	switch {
	case errors.Is(err, ErrBlankStorage):
		log.WithField("err", err).Info("Lesson storage is blank, starting with an empty list")
	case err != nil:
		log.WithField("err", err).Error("Could not load lessons, starting with an empty list")
	}
	return s
}

// Location is the timezone lessons are scheduled in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Reload replaces the in-memory list with the stored one. On error, including
// ErrBlankStorage, the current list is kept.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.storage.Load(ctx)
	if err != nil {
		return err
	}
	valid := make([]Lesson, 0, len(loaded))
	for _, l := range loaded {
		if err := l.normalize(s.loc); err != nil {
			log.WithFields(log.Fields{"err": err, "lesson": l.Description}).Error("Skipping lesson with broken date")
			continue
		}
		valid = append(valid, l)
	}

	s.lessons = valid
	log.Printf("Loaded %d lessons", len(valid))
	return nil
}

// persist must be called with mu held
func (s *Store) persist(ctx context.Context) {
	snapshot := append([]Lesson(nil), s.lessons...)
	if err := s.storage.Save(ctx, snapshot); err != nil {
		log.WithFields(log.Fields{"err": err, "lessons": len(snapshot)}).Error("Could not save lessons")
	}
}

// Add appends a new lesson with the reminder flag cleared.
func (s *Store) Add(ctx context.Context, date, clock, description string) (Entry, error) {
	l, err := NewLesson(date, clock, description, s.loc)
	if err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons = append(s.lessons, l)
	s.persist(ctx)
	log.WithFields(log.Fields{"date": l.Date, "clock": l.Time, "description": l.Description}).Info("Lesson added")
	return Entry{Position: len(s.lessons), Lesson: l}, nil
}

// Delete removes the lesson at the 1-based position.
func (s *Store) Delete(ctx context.Context, position int) (Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if position < 1 || position > len(s.lessons) {
		return Lesson{}, fmt.Errorf("%w: %d not in [1, %d]", ErrOutOfRange, position, len(s.lessons))
	}

	removed := s.lessons[position-1]
	s.lessons = append(s.lessons[:position-1], s.lessons[position:]...)
	s.persist(ctx)
	log.WithFields(log.Fields{"position": position, "description": removed.Description}).Info("Lesson deleted")
	return removed, nil
}

// Len returns the number of stored lessons.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lessons)
}

// All returns every lesson in insertion order.
func (s *Store) All() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries(func(Lesson) bool { return true })
}

// Upcoming returns at most n lessons starting at now or later, earliest first.
func (s *Store) Upcoming(now time.Time, n int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.entries(func(l Lesson) bool { return !l.Start.Before(now) })
	sortByStart(result)
	if n >= 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

// Today returns lessons on now's calendar date in the store timezone, earliest first.
func (s *Store) Today(now time.Time) []Entry {
	today := now.In(s.loc)
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.entries(func(l Lesson) bool { return sameDay(l.Start, today) })
	sortByStart(result)
	return result
}

// RemindDue calls notify for every not yet reminded lesson starting within
// [now, now+lookahead], marks it reminded and saves the list once if anything changed.
func (s *Store) RemindDue(ctx context.Context, now time.Time, lookahead time.Duration, notify func(Entry)) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminded := 0
	for i := range s.lessons {
		l := &s.lessons[i]
		if l.Reminded {
			continue
		}
		until := l.Start.Sub(now)
		if until < 0 || until > lookahead {
			continue
		}
		notify(Entry{Position: i + 1, Lesson: *l})
		l.Reminded = true
		reminded++
	}
	if reminded > 0 {
		s.persist(ctx)
	}
	return reminded
}

// entries must be called with mu held
func (s *Store) entries(match func(Lesson) bool) []Entry {
	result := make([]Entry, 0, len(s.lessons))
	for i, l := range s.lessons {
		if match(l) {
			result = append(result, Entry{Position: i + 1, Lesson: l})
		}
	}
	return result
}
