package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cardindex/internal/domain/models"
)

// Session накопленный пул нормализованных записей одной сессии ревью.
// Пул только пополняется: дубликаты при повторной обработке того же
// изображения ожидаемы и разбираются на этапе сопоставления, а не здесь.
type Session struct {
	ID         string
	entries    []models.NormalizedEntry
	lastAccess time.Time
}

// Store реестр сессий ревью. Явная замена глобального накопителя:
// все состояние живет здесь и передается в вызовы по ссылке.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore создает реестр сессий с фоновой уборкой по простою
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Create открывает новую сессию и возвращает ее идентификатор
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.sessions[id] = &Session{
		ID:         id,
		lastAccess: time.Now(),
	}
	return id
}

// Append дописывает записи в пул сессии. Несуществующая сессия
// создается на месте: клиент мог пережить рестарт сервера.
func (s *Store) Append(sessionID string, entries []models.NormalizedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil {
		sess = &Session{ID: sessionID}
		s.sessions[sessionID] = sess
	}
	sess.entries = append(sess.entries, entries...)
	sess.lastAccess = time.Now()
}

// Entries возвращает копию пула в порядке добавления
func (s *Store) Entries(sessionID string) []models.NormalizedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil {
		return nil
	}
	sess.lastAccess = time.Now()
	out := make([]models.NormalizedEntry, len(sess.entries))
	copy(out, sess.entries)
	return out
}

// UpdateEntry применяет правку пользователя к записи по ее ID.
// Правленые значения считаются авторитетными и дальше не нормализуются.
func (s *Store) UpdateEntry(sessionID, entryID, name, dob string) (models.NormalizedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil {
		return models.NormalizedEntry{}, fmt.Errorf("session %s not found", sessionID)
	}
	sess.lastAccess = time.Now()

	for i := range sess.entries {
		if sess.entries[i].ID != entryID {
			continue
		}
		sess.entries[i].Name = name
		sess.entries[i].DOB = dob
		return sess.entries[i], nil
	}
	return models.NormalizedEntry{}, fmt.Errorf("entry %s not found in session %s", entryID, sessionID)
}

// Reset очищает пул сессии, сохраняя сам идентификатор
func (s *Store) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess := s.sessions[sessionID]; sess != nil {
		sess.entries = nil
		sess.lastAccess = time.Now()
	}
}

// Close останавливает фоновую уборку
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// janitor удаляет сессии, простаивающие дольше TTL
func (s *Store) janitor() {
	ticker := time.NewTicker(s.ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep один проход уборки
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
			slog.Debug("сессия удалена по простою", "session_id", id)
		}
	}
}
