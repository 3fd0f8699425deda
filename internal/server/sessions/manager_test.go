package sessions

import (
	"context"
	"sync"
	"testing"

	"github.com/examhub/examhub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEndpoint struct {
	mu        sync.Mutex
	errors    []string
	shutdowns int
}

func (f *fakeEndpoint) PushError(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, message)
}

func (f *fakeEndpoint) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
}

func (f *fakeEndpoint) kicked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors) > 0 && f.shutdowns > 0
}

func TestBindFirstLogin(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ep := &fakeEndpoint{}

	s := m.Bind(context.Background(), "alice", "participant", ep)

	require.NotNil(t, s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "alice", s.UserName)
	assert.Equal(t, 1, m.Active())
	assert.False(t, ep.kicked())
}

func TestBindSupersedesAndKicks(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ctx := context.Background()
	epOld := &fakeEndpoint{}
	epNew := &fakeEndpoint{}

	old := m.Bind(ctx, "alice", "participant", epOld)
	newer := m.Bind(ctx, "alice", "participant", epNew)

	assert.NotEqual(t, old.ID, newer.ID)
	assert.Equal(t, 1, m.Active(), "one live session per username")

	require.True(t, epOld.kicked())
	assert.Contains(t, epOld.errors[0], "another location")
	assert.False(t, epNew.kicked())
}

func TestRebindSameEndpointDoesNotKick(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ctx := context.Background()
	ep := &fakeEndpoint{}

	m.Bind(ctx, "alice", "participant", ep)
	m.Bind(ctx, "alice", "participant", ep)

	assert.False(t, ep.kicked())
	assert.Equal(t, 1, m.Active())
}

func TestReleaseCurrentSession(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ctx := context.Background()

	s := m.Bind(ctx, "alice", "participant", &fakeEndpoint{})
	m.Release(ctx, s)

	assert.Equal(t, 0, m.Active())
}

func TestReleaseSupersededSessionKeepsCurrent(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ctx := context.Background()

	old := m.Bind(ctx, "alice", "participant", &fakeEndpoint{})
	m.Bind(ctx, "alice", "participant", &fakeEndpoint{})

	// The kicked connection releasing its stale session must not evict the
	// session that replaced it.
	m.Release(ctx, old)

	assert.Equal(t, 1, m.Active())
}

func TestReleaseNil(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	m.Release(context.Background(), nil)
	assert.Equal(t, 0, m.Active())
}

func TestConcurrentBindSameUser(t *testing.T) {
	m := NewManager(logging.NopLogger{})
	ctx := context.Background()

	const n = 32
	endpoints := make([]*fakeEndpoint, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		endpoints[i] = &fakeEndpoint{}
		wg.Add(1)
		go func(ep *fakeEndpoint) {
			defer wg.Done()
			m.Bind(ctx, "alice", "participant", ep)
		}(endpoints[i])
	}
	wg.Wait()

	assert.Equal(t, 1, m.Active(), "exactly one session survives")

	kicked := 0
	for _, ep := range endpoints {
		if ep.kicked() {
			kicked++
		}
	}
	assert.Equal(t, n-1, kicked, "every displaced connection observes the kick")
}
