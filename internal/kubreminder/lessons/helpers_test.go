package lessons

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tbilisi = time.FixedZone("Asia/Tbilisi", 4*60*60)

var errStorageDown = errors.New("storage is down")

// memStorage keeps a copy of the last saved list
type memStorage struct {
	mu        sync.Mutex
	lessons   []Lesson
	saves     int
	failLoad  bool
	failSave  bool
	panicSave bool
}

func (m *memStorage) Load(ctx context.Context) ([]Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, errStorageDown
	}
	return append([]Lesson(nil), m.lessons...), nil
}

func (m *memStorage) Save(ctx context.Context, lessons []Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicSave {
		panic("save exploded")
	}
	if m.failSave {
		return errStorageDown
	}
	m.saves++
	m.lessons = append([]Lesson(nil), lessons...)
	return nil
}

func (m *memStorage) stored() []Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Lesson(nil), m.lessons...)
}

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	return NewStore(context.Background(), storage, tbilisi)
}

func mustAdd(t *testing.T, s *Store, date, clock, description string) Entry {
	t.Helper()
	e, err := s.Add(context.Background(), date, clock, description)
	require.NoError(t, err)
	return e
}

func at(date, clock string) time.Time {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, tbilisi)
	if err != nil {
		panic(err)
	}
	return t
}

func descriptions(entries []Entry) []string {
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Description)
	}
	return result
}

func positions(entries []Entry) []int {
	result := make([]int, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Position)
	}
	return result
}

func assertSameLessons(t *testing.T, expected, actual []Lesson) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Date, actual[i].Date, "lesson %d", i)
		assert.Equal(t, expected[i].Time, actual[i].Time, "lesson %d", i)
		assert.Equal(t, expected[i].Description, actual[i].Description, "lesson %d", i)
		assert.Equal(t, expected[i].Reminded, actual[i].Reminded, "lesson %d", i)
		assert.True(t, expected[i].Start.Equal(actual[i].Start), "lesson %d: %s != %s", i, expected[i].Start, actual[i].Start)
	}
}

func lessonsOf(entries []Entry) []Lesson {
	result := make([]Lesson, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Lesson)
	}
	return result
}

func commandMsg(user, chat int64, text string) tgbotapi.Message {
	cmdLen := strings.IndexByte(text, ' ')
	if cmdLen < 0 {
		cmdLen = len(text)
	}
	return tgbotapi.Message{
		MessageID: 42,
		From:      &tgbotapi.User{ID: user},
		Chat:      &tgbotapi.Chat{ID: chat},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

type sentMsg struct {
	chat int64
	text string
}

func receive(t *testing.T, out <-chan tgbotapi.Chattable) sentMsg {
	t.Helper()
	select {
	case c := <-out:
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok, "unexpected chattable %T", c)
		return sentMsg{chat: msg.ChatID, text: msg.Text}
	case <-time.After(time.Second):
		t.Fatal("no message has been sent")
	}
	return sentMsg{}
}

func drain(out chan tgbotapi.Chattable) []sentMsg {
	result := make([]sentMsg, 0)
	for {
		select {
		case c := <-out:
			msg := c.(tgbotapi.MessageConfig)
			result = append(result, sentMsg{chat: msg.ChatID, text: msg.Text})
		default:
			return result
		}
	}
}

type fakeCron struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *fakeCron) AddJob(when time.Time, job tgbotbase.CronJob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.times = append(c.times, when)
}

func (c *fakeCron) scheduled() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Time(nil), c.times...)
}
