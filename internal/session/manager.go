// Package session 管理浏览器会话与各自的状态 store：一个会话一个 store，会话结束即丢弃。
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"decision-console/internal/store"

	"github.com/google/uuid"
)

// Entry 一个活跃会话
type Entry struct {
	ID        string
	Store     *store.Store
	CreatedAt time.Time

	lastSeen atomic.Int64
}

func (e *Entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *Entry) LastSeen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}

// Factory 为新会话构造 store
type Factory func(sessionID string) *store.Store

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Entry

	newStore    Factory
	idleTimeout time.Duration
	onCreate    func(*Entry)
	onClose     func(*Entry)
	now         func() time.Time
}

type Option func(*Manager)

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

func OnCreate(fn func(*Entry)) Option {
	return func(m *Manager) { m.onCreate = fn }
}

func OnClose(fn func(*Entry)) Option {
	return func(m *Manager) { m.onClose = fn }
}

// withClock 测试用
func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*Entry),
		newStore:    factory,
		idleTimeout: 30 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create 新建会话，ID 为 uuid v4
func (m *Manager) Create() *Entry {
	id := uuid.NewString()
	now := m.now()
	e := &Entry{
		ID:        id,
		Store:     m.newStore(id),
		CreatedAt: now,
	}
	e.touch(now)

	m.mu.Lock()
	m.sessions[id] = e
	m.mu.Unlock()

	if m.onCreate != nil {
		m.onCreate(e)
	}
	return e
}

// Get 查找会话并刷新活跃时间
func (m *Manager) Get(id string) (*Entry, bool) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		e.touch(m.now())
	}
	return e, ok
}

// GetOrCreate 会话不存在（或 ID 不合法）时新建，第二个返回值表示是否新建
func (m *Manager) GetOrCreate(id string) (*Entry, bool) {
	if _, err := uuid.Parse(id); err == nil {
		if e, ok := m.Get(id); ok {
			return e, false
		}
	}
	return m.Create(), true
}

// Close 结束会话并丢弃其快照
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.closeEntry(e)
	return true
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	entries := make([]*Entry, 0, len(m.sessions))
	for id, e := range m.sessions {
		entries = append(entries, e)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, e := range entries {
		m.closeEntry(e)
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep 回收空闲超时的会话，返回回收数量
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*Entry
	for id, e := range m.sessions {
		if e.LastSeen().Before(cutoff) {
			idle = append(idle, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range idle {
		m.closeEntry(e)
	}
	return len(idle)
}

// Start 后台定期回收，ctx 结束时关闭全部会话
func (m *Manager) Start(ctx context.Context) {
	interval := m.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				m.CloseAll()
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

func (m *Manager) closeEntry(e *Entry) {
	e.Store.Close()
	if m.onClose != nil {
		m.onClose(e)
	}
}
