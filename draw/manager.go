package draw

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/projetojaiba/corrida-system/models"
)

var ErrSessionNotFound = errors.New("draw session not found")

const sessionTTL = time.Hour

type session struct {
	engine       *Engine
	loteID       *int
	lastActivity time.Time
}

// Manager хранит активные сессии розыгрыша по токену.
// Сессии, неактивные дольше часа, вычищаются.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	newRand  func() *mrand.Rand
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		newRand: func() *mrand.Rand {
			return mrand.New(mrand.NewSource(time.Now().UnixNano()))
		},
	}
}

// NewManagerWithRand позволяет подставить источник случайности (для тестов).
func NewManagerWithRand(newRand func() *mrand.Rand) *Manager {
	m := NewManager()
	m.newRand = newRand
	return m
}

// StartSession создаёт сессию по снимку подтверждённых заявок и возвращает её токен.
func (m *Manager) StartSession(pool []models.Inscricao, loteID *int) (string, *Engine, error) {
	engine, err := NewEngine(pool, m.newRand())
	if err != nil {
		return "", nil, err
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = &session{
		engine:       engine,
		loteID:       loteID,
		lastActivity: time.Now(),
	}
	return token, engine, nil
}

// Get возвращает движок сессии по токену.
func (m *Manager) Get(token string) (*Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastActivity = time.Now()
	return s.engine, nil
}

// End удаляет сессию (после финализации или отмены).
func (m *Manager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// CleanupInactive удаляет сессии без активности дольше TTL и возвращает
// число удалённых.
func (m *Manager) CleanupInactive() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, s := range m.sessions {
		if time.Since(s.lastActivity) > sessionTTL {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

func newSessionToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
