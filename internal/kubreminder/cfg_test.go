package kubreminder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"TELEGRAM_BOT_TOKEN", "CHAT_ID", "ADMIN_ID", "ALLOWED_CHATS",
	"LESSONS_FILE", "KUBREMINDER_TIMEZONE", "REDIS_SERVER", "REDIS_PASS",
}

// clearConfigEnv makes the test independent of the caller environment
func clearConfigEnv(t *testing.T) {
	for _, name := range configEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "kubreminder.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testConfigFile = `
[tgbot]
token = file-token

[reminder]
chatid = -100
adminid = 1
adminid = 2
lessonsfile = /var/lib/kubreminder/lessons.json
lookahead = 15m
digesttime = 9h30m
upcominglimit = 5
watchfile = true

[proxy-socks5]
server = localhost:1080
`

func TestConfigFromFile(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := NewConfig(writeConfig(t, testConfigFile))
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.TGBot.Token)
	assert.Equal(t, "localhost:1080", cfg.Proxy_SOCKS5.Server)
	assert.Equal(t, []int64{1, 2}, cfg.Reminder.AdminID)
	assert.Equal(t, "/var/lib/kubreminder/lessons.json", cfg.Reminder.LessonsFile)
	assert.Equal(t, "Asia/Tbilisi", cfg.Reminder.Timezone)
	assert.True(t, cfg.Reminder.WatchFile)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, tgbotbase.ChatID(-100), s.PrimaryChat)
	assert.Equal(t, []tgbotbase.UserID{1, 2}, s.Admins)
	assert.Equal(t, 15*time.Minute, s.Lookahead)
	assert.Equal(t, time.Minute, s.PollInterval)
	assert.Equal(t, 9*time.Hour+30*time.Minute, s.DigestTime)
	assert.Equal(t, 5, s.UpcomingLimit)
}

func TestConfigEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("CHAT_ID", "-555")
	t.Setenv("ADMIN_ID", "10, 20,,30")
	t.Setenv("ALLOWED_CHATS", "-1,-2")
	t.Setenv("LESSONS_FILE", "other.json")
	t.Setenv("REDIS_SERVER", "redis:6379")

	cfg, err := NewConfig(writeConfig(t, testConfigFile))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TGBot.Token)
	assert.Equal(t, int64(-555), cfg.Reminder.ChatID)
	assert.Equal(t, []int64{10, 20, 30}, cfg.Reminder.AdminID)
	assert.Equal(t, []int64{-1, -2}, cfg.Reminder.AllowedChat)
	assert.Equal(t, "other.json", cfg.Reminder.LessonsFile)
	assert.Equal(t, "redis:6379", cfg.Redis.Server)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, []tgbotbase.ChatID{-555, -1, -2}, s.Destinations())
}

func TestConfigEnvOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("CHAT_ID", "-555")
	t.Setenv("ADMIN_ID", "10")

	cfg, err := NewConfig(filepath.Join(t.TempDir(), "absent.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "lessons.json", cfg.Reminder.LessonsFile)

	s, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, s.Lookahead)
	assert.Equal(t, 10*time.Hour, s.DigestTime)
	assert.Equal(t, 10, s.UpcomingLimit)
}

func TestConfigErrors(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.cfg")
	cases := map[string]map[string]string{
		"missing token": {"CHAT_ID": "-1", "ADMIN_ID": "1"},
		"missing chat":  {"TELEGRAM_BOT_TOKEN": "x", "ADMIN_ID": "1"},
		"missing admin": {"TELEGRAM_BOT_TOKEN": "x", "CHAT_ID": "-1"},
		"bad admin":     {"TELEGRAM_BOT_TOKEN": "x", "CHAT_ID": "-1", "ADMIN_ID": "1,boss"},
		"bad chat":      {"TELEGRAM_BOT_TOKEN": "x", "CHAT_ID": "main", "ADMIN_ID": "1"},
	}
	for name, env := range cases {
		env := env
		t.Run(name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := NewConfig(absent)
			assert.Error(t, err)
		})
	}
}

func TestConfigBadDurations(t *testing.T) {
	cfg := defaultConfig()
	cfg.Reminder.Lookahead = "half an hour"
	_, err := cfg.Settings()
	assert.Error(t, err)

	cfg = defaultConfig()
	cfg.Reminder.PollInterval = "0s"
	_, err = cfg.Settings()
	assert.Error(t, err)
}

func TestConfigLocation(t *testing.T) {
	cfg := defaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tbilisi", loc.String())

	cfg.Reminder.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
