package lessons

import (
	"fmt"
	"sort"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Lesson is a single scheduled lesson as it is persisted.
type Lesson struct {
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Description string    `json:"description"`
	Start       time.Time `json:"datetime"`
	Reminded    bool      `json:"reminded"`
}

// Entry is a lesson together with its 1-based position in the store.
type Entry struct {
	Position int
	Lesson
}

// NewLesson validates date and clock and builds a lesson starting at that moment in loc.
func NewLesson(date, clock, description string, loc *time.Location) (Lesson, error) {
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
	if err != nil {
		return Lesson{}, fmt.Errorf("%w: date %q time %q: %s", ErrFormat, date, clock, err)
	}
	return Lesson{
		Date:        start.Format(dateLayout),
		Time:        start.Format(timeLayout),
		Description: description,
		Start:       start,
	}, nil
}

// normalize brings Start into loc, recomputing it from Date and Time when it was not stored.
func (l *Lesson) normalize(loc *time.Location) error {
	if l.Start.IsZero() {
		parsed, err := NewLesson(l.Date, l.Time, l.Description, loc)
		if err != nil {
			return err
		}
		l.Start = parsed.Start
		return nil
	}
	l.Start = l.Start.In(loc)
	return nil
}

func sortByStart(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start.Before(entries[j].Start)
	})
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
