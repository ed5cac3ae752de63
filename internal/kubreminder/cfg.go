package kubreminder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // the timezone must resolve on hosts without zoneinfo

	"github.com/ilyalavrinov/kubreminder/internal/kubreminder/lessons"
	"github.com/ilyalavrinov/kubreminder/pkg/tgbotbase"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gcfg.v1"
)

type Config struct {
	tgbotbase.Config
	Redis    tgbotbase.RedisConfig
	Reminder struct {
		ChatID        int64
		AdminID       []int64
		AllowedChat   []int64
		LessonsFile   string
		Timezone      string
		Lookahead     string
		PollInterval  string
		DigestTime    string
		UpcomingLimit int
		WatchFile     bool
	}
}

func defaultConfig() Config {
	var cfg Config
	cfg.Reminder.LessonsFile = "lessons.json"
	cfg.Reminder.Timezone = "Asia/Tbilisi"
	cfg.Reminder.Lookahead = "30m"
	cfg.Reminder.PollInterval = "1m"
	cfg.Reminder.DigestTime = "10h"
	cfg.Reminder.UpcomingLimit = 10
	return cfg
}

// NewConfig reads the optional cfg file, then .env and the process environment.
// Environment values override the file.
func NewConfig(filename string) (Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(filename); err == nil {
		log.Printf("Reading configuration from: %s", filename)
		if err := gcfg.ReadFileInto(&cfg, filename); err != nil {
			log.Printf("Could not correctly parse configuration file: %s; error: %s", filename, err)
			return cfg, err
		}
	} else {
		log.Printf("No configuration file at %s, using environment only", filename)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("cannot load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v, found := os.LookupEnv("TELEGRAM_BOT_TOKEN"); found {
		cfg.TGBot.Token = v
	}
	if v, found := os.LookupEnv("CHAT_ID"); found {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot convert CHAT_ID %q to int64 id: %w", v, err)
		}
		cfg.Reminder.ChatID = id
	}
	if v, found := os.LookupEnv("ADMIN_ID"); found {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("ADMIN_ID: %w", err)
		}
		cfg.Reminder.AdminID = ids
	}
	if v, found := os.LookupEnv("ALLOWED_CHATS"); found {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("ALLOWED_CHATS: %w", err)
		}
		cfg.Reminder.AllowedChat = ids
	}
	if v, found := os.LookupEnv("LESSONS_FILE"); found && v != "" {
		cfg.Reminder.LessonsFile = v
	}
	if v, found := os.LookupEnv("KUBREMINDER_TIMEZONE"); found && v != "" {
		cfg.Reminder.Timezone = v
	}
	if v, found := os.LookupEnv("REDIS_SERVER"); found {
		cfg.Redis.Server = v
	}
	if v, found := os.LookupEnv("REDIS_PASS"); found {
		cfg.Redis.Pass = v
	}
	return nil
}

// parseIDs parses a comma separated list of ids, empty items are skipped
func parseIDs(list string) ([]int64, error) {
	result := make([]int64, 0)
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int64 id: %w", item, err)
		}
		result = append(result, id)
	}
	return result, nil
}

func (cfg Config) validate() error {
	if cfg.TGBot.Token == "" && !cfg.TGBot.SkipConnect {
		return fmt.Errorf("no token found")
	}
	if cfg.Reminder.ChatID == 0 {
		return fmt.Errorf("no primary chat id found")
	}
	if len(cfg.Reminder.AdminID) == 0 {
		return fmt.Errorf("no admin users found")
	}
	return nil
}

// Location loads the configured timezone.
func (cfg Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Reminder.Timezone, err)
	}
	return loc, nil
}

// Settings converts the reminder section into handler settings.
func (cfg Config) Settings() (lessons.Settings, error) {
	s := lessons.DefaultSettings()
	s.PrimaryChat = tgbotbase.ChatID(cfg.Reminder.ChatID)
	for _, id := range cfg.Reminder.AllowedChat {
		s.AllowedChats = append(s.AllowedChats, tgbotbase.ChatID(id))
	}
	for _, id := range cfg.Reminder.AdminID {
		s.Admins = append(s.Admins, tgbotbase.UserID(id))
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"lookahead", cfg.Reminder.Lookahead, &s.Lookahead},
		{"pollinterval", cfg.Reminder.PollInterval, &s.PollInterval},
		{"digesttime", cfg.Reminder.DigestTime, &s.DigestTime},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return s, fmt.Errorf("bad [reminder] %s %q: %w", d.name, d.value, err)
		}
		if parsed < 0 {
			return s, fmt.Errorf("bad [reminder] %s %q: negative", d.name, d.value)
		}
		*d.dst = parsed
	}
	if s.PollInterval == 0 {
		return s, fmt.Errorf("bad [reminder] pollinterval: zero")
	}
	if cfg.Reminder.UpcomingLimit > 0 {
		s.UpcomingLimit = cfg.Reminder.UpcomingLimit
	}
	return s, nil
}
