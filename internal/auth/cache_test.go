package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache(time.Hour)
	tokenID, orgID := uuid.New(), uuid.New()

	c.Put("lookup-1", RoleAgent, tokenID, orgID, "agent-1")

	entry, ok := c.Get("lookup-1", RoleAgent)
	require.True(t, ok)
	assert.Equal(t, tokenID, entry.TokenID)
	assert.Equal(t, orgID, entry.OrgID)
	assert.Equal(t, "agent-1", entry.Name)
}

func TestCacheRoleMismatch(t *testing.T) {
	c := NewCache(time.Hour)
	c.Put("lookup-1", RoleAgent, uuid.New(), uuid.New(), "agent-1")

	_, ok := c.Get("lookup-1", RoleAdmin)
	assert.False(t, ok)
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(time.Hour)

	_, ok := c.Get("nonexistent", RoleAgent)
	assert.False(t, ok)
}

func TestCacheExpired(t *testing.T) {
	c := NewCache(1 * time.Millisecond)
	c.Put("lookup-1", RoleAgent, uuid.New(), uuid.New(), "agent-1")

	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("lookup-1", RoleAgent)
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c := NewCache(0)
	c.Put("lookup-1", RoleAgent, uuid.New(), uuid.New(), "agent-1")

	_, ok := c.Get("lookup-1", RoleAgent)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvict(t *testing.T) {
	c := NewCache(time.Hour)
	revoked, kept := uuid.New(), uuid.New()
	orgID := uuid.New()

	c.Put("lookup-1", RoleAgent, revoked, orgID, "agent-1")
	c.Put("lookup-2", RoleAgent, kept, orgID, "agent-2")

	assert.True(t, c.Evict(revoked))
	assert.False(t, c.Evict(uuid.New()))

	_, ok := c.Get("lookup-1", RoleAgent)
	assert.False(t, ok)
	_, ok = c.Get("lookup-2", RoleAgent)
	assert.True(t, ok)
}

func TestCacheRevokeBlocksLatePut(t *testing.T) {
	c := NewCache(time.Hour)
	tokenID, orgID := uuid.New(), uuid.New()

	c.Put("lookup-1", RoleAgent, tokenID, orgID, "agent-1")
	assert.True(t, c.Revoke(tokenID))

	// An authentication that loaded the row before the revocation finishes
	// afterwards.
	c.Put("lookup-1", RoleAgent, tokenID, orgID, "agent-1")

	_, ok := c.Get("lookup-1", RoleAgent)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	other := uuid.New()
	c.Put("lookup-2", RoleAgent, other, orgID, "agent-2")
	_, ok = c.Get("lookup-2", RoleAgent)
	assert.True(t, ok)
}

func TestCacheRevokeWithoutEntry(t *testing.T) {
	c := NewCache(time.Hour)
	tokenID := uuid.New()

	assert.False(t, c.Revoke(tokenID))

	c.Put("lookup-1", RoleAdmin, tokenID, uuid.New(), "admin")
	_, ok := c.Get("lookup-1", RoleAdmin)
	assert.False(t, ok)
}

func TestCacheCleanupDropsExpiredTombstones(t *testing.T) {
	c := NewCache(1 * time.Millisecond)
	tokenID := uuid.New()
	c.Revoke(tokenID)

	time.Sleep(5 * time.Millisecond)
	c.cleanup()

	c.mu.RLock()
	assert.Empty(t, c.revoked)
	c.mu.RUnlock()
}

func TestCacheCleanup(t *testing.T) {
	c := NewCache(1 * time.Millisecond)
	c.Put("lookup-1", RoleAgent, uuid.New(), uuid.New(), "agent-1")

	time.Sleep(5 * time.Millisecond)

	c.cleanup()
	assert.Equal(t, 0, c.Len())
}

func TestCacheStartCleanupStops(t *testing.T) {
	c := NewCache(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.StartCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			tokenID := uuid.New()
			lookup := tokenID.String()
			c.Put(lookup, RoleAgent, tokenID, uuid.New(), "agent")
			_, _ = c.Get(lookup, RoleAgent)
			if id%5 == 0 {
				c.Evict(tokenID)
			}
			if id%7 == 0 {
				c.Revoke(tokenID)
			}
		}(i)
	}
	wg.Wait()
}
