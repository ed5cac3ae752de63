package tgbotbase

// UserID is a Telegram user identifier
type UserID int64

// ChatID is a Telegram chat identifier
type ChatID int64
