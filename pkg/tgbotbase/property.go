package tgbotbase

import (
	"context"
	"fmt"
	"sync"
)

// PropertyStorage keeps named string settings for users and chats.
// Lookup order is: user in chat, user anywhere, chat default.
type PropertyStorage interface {
	GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error)
	SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error
	SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error
}

type propertyKey struct {
	name string
	user UserID
	chat ChatID
}

// MemoryPropertyStorage is a process-local PropertyStorage; values are lost on restart.
type MemoryPropertyStorage struct {
	mu    sync.RWMutex
	props map[propertyKey]string
}

var _ PropertyStorage = &MemoryPropertyStorage{}

func NewMemoryPropertyStorage() *MemoryPropertyStorage {
	return &MemoryPropertyStorage{props: make(map[propertyKey]string)}
}

func (m *MemoryPropertyStorage) SetPropertyForUserInChat(ctx context.Context, name string, user UserID, chat ChatID, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[propertyKey{name: name, user: user, chat: chat}] = fmt.Sprint(value)
	return nil
}

func (m *MemoryPropertyStorage) SetPropertyForChat(ctx context.Context, name string, chat ChatID, value interface{}) error {
	return m.SetPropertyForUserInChat(ctx, name, 0, chat, value)
}

func (m *MemoryPropertyStorage) GetProperty(ctx context.Context, name string, user UserID, chat ChatID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range lookupOrder(name, user, chat) {
		if v, found := m.props[k]; found {
			return v, nil
		}
	}
	return "", nil
}

func lookupOrder(name string, user UserID, chat ChatID) []propertyKey {
	return []propertyKey{
		{name: name, user: user, chat: chat},
		{name: name, user: user, chat: ChatID(user)},
		{name: name, user: 0, chat: chat},
	}
}
