package lessons

import (
	"time"

	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
)

// Settings are shared by the command and reminder handlers.
type Settings struct {
	PrimaryChat  tgbotbase.ChatID
	AllowedChats []tgbotbase.ChatID
	Admins       []tgbotbase.UserID

	Lookahead     time.Duration
	PollInterval  time.Duration
	DigestTime    time.Duration // offset from local midnight
	UpcomingLimit int
}

func DefaultSettings() Settings {
	return Settings{
		Lookahead:     30 * time.Minute,
		PollInterval:  time.Minute,
		DigestTime:    10 * time.Hour,
		UpcomingLimit: 10,
	}
}

// Destinations returns the primary chat followed by the additional ones, without zeros and duplicates.
func (s Settings) Destinations() []tgbotbase.ChatID {
	all := append([]tgbotbase.ChatID{s.PrimaryChat}, s.AllowedChats...)
	result := make([]tgbotbase.ChatID, 0, len(all))
	seen := make(map[tgbotbase.ChatID]bool, len(all))
	for _, c := range all {
		if c == 0 || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

func (s Settings) isAdmin(user tgbotbase.UserID) bool {
	for _, a := range s.Admins {
		if a == user {
			return true
		}
	}
	return false
}

// chatAllowed is true for any chat unless additional chats are configured
func (s Settings) chatAllowed(chat tgbotbase.ChatID) bool {
	if len(s.AllowedChats) == 0 || chat == s.PrimaryChat {
		return true
	}
	for _, c := range s.AllowedChats {
		if c == chat {
			return true
		}
	}
	return false
}
