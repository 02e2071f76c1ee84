package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the two kinds of bearer tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

type cachedIdentity struct {
	Role      Role
	TokenID   uuid.UUID
	OrgID     uuid.UUID
	Name      string
	ExpiresAt time.Time
}

// Cache remembers authenticated tokens by lookup key so that repeat requests
// skip the bcrypt comparison. Entries expire after ttl; revocation evicts
// immediately and blocks re-caching of the token for one ttl.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cachedIdentity
	revoked map[uuid.UUID]time.Time
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cachedIdentity),
		revoked: make(map[uuid.UUID]time.Time),
		ttl:     ttl,
	}
}

func (c *Cache) Put(lookup string, role Role, tokenID, orgID uuid.UUID, name string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// An authentication that read the token row before a concurrent
	// revocation committed must not cache it.
	if _, revoked := c.revoked[tokenID]; revoked {
		return
	}
	c.entries[lookup] = &cachedIdentity{
		Role:      role,
		TokenID:   tokenID,
		OrgID:     orgID,
		Name:      name,
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

func (c *Cache) Get(lookup string, role Role) (cachedIdentity, bool) {
	c.mu.RLock()
	entry, exists := c.entries[lookup]
	c.mu.RUnlock()

	if !exists || entry.Role != role || time.Now().After(entry.ExpiresAt) {
		return cachedIdentity{}, false
	}
	return *entry, true
}

// Revoke evicts tokenID and refuses to cache it again until the tombstone
// expires.
func (c *Cache) Revoke(tokenID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 {
		c.revoked[tokenID] = time.Now().Add(c.ttl)
	}
	return c.evictLocked(tokenID)
}

// Evict drops every entry for tokenID.
func (c *Cache) Evict(tokenID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictLocked(tokenID)
}

func (c *Cache) evictLocked(tokenID uuid.UUID) bool {
	removed := false
	for key, entry := range c.entries {
		if entry.TokenID == tokenID {
			delete(c.entries, key)
			removed = true
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	for tokenID, until := range c.revoked {
		if now.After(until) {
			delete(c.revoked, tokenID)
		}
	}
	if removed > 0 {
		slog.Debug("Cleaned up cached identities", "removed", removed)
	}
}
