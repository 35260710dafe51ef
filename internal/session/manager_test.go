package session

import (
	"sync"
	"testing"
	"time"

	"decision-console/internal/service"
	"decision-console/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	api := service.NewAPIClient("http://127.0.0.1:0", time.Second)
	factory := func(id string) *store.Store {
		return store.New(api, store.WithSessionID(id))
	}
	return NewManager(factory, opts...)
}

func TestManager_CreateAndGet(t *testing.T) {
	var created []string
	m := newManager(t, OnCreate(func(e *Entry) { created = append(created, e.ID) }))

	e := m.Create()
	require.NotEmpty(t, e.ID)
	assert.Equal(t, e.ID, e.Store.SessionID())
	assert.Equal(t, []string{e.ID}, created)

	got, ok := m.Get(e.ID)
	require.True(t, ok)
	assert.Same(t, e.Store, got.Store)
	assert.Equal(t, 1, m.Len())
}

func TestManager_GetOrCreate(t *testing.T) {
	m := newManager(t)

	e, created := m.GetOrCreate("not-a-uuid")
	assert.True(t, created)

	again, created := m.GetOrCreate(e.ID)
	assert.False(t, created)
	assert.Same(t, e, again)

	// 合法 uuid 但已不存在
	m.Close(e.ID)
	fresh, created := m.GetOrCreate(e.ID)
	assert.True(t, created)
	assert.NotEqual(t, e.ID, fresh.ID)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newManager(t)
	a := m.Create()
	b := m.Create()
	assert.NotSame(t, a.Store, b.Store)
}

func TestManager_SweepClosesIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var closed []string
	m := newManager(t,
		withClock(clock.Now),
		WithIdleTimeout(10*time.Minute),
		OnClose(func(e *Entry) { closed = append(closed, e.ID) }),
	)

	idle := m.Create()
	active := m.Create()
	updates, cancel := idle.Store.Subscribe()
	defer cancel()

	clock.Advance(6 * time.Minute)
	_, _ = m.Get(active.ID)
	clock.Advance(6 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, []string{idle.ID}, closed)
	_, ok := m.Get(idle.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)

	// 会话结束时订阅被关闭
	_, open := <-updates
	assert.False(t, open)
}

func TestManager_CloseAll(t *testing.T) {
	m := newManager(t)
	m.Create()
	m.Create()

	m.CloseAll()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Close("missing"))
}
