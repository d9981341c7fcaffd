package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

const DefaultGrantTTL = 15 * time.Minute

type grantStore struct {
	grants map[string]domain.Grant
	ttl    time.Duration
	now    func() time.Time
	mutex  sync.Mutex
}

func NewGrantStore(ttl time.Duration, now func() time.Time) interfaces.GrantStore {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	if now == nil {
		now = time.Now
	}

	return &grantStore{
		grants: map[string]domain.Grant{},
		ttl:    ttl,
		now:    now,
	}
}

func (g *grantStore) Issue(ctx context.Context, key string) (domain.Grant, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.evict()

	grant := domain.Grant{
		Key:       key,
		Token:     uuid.NewString(),
		ExpiresAt: g.now().Add(g.ttl),
	}
	g.grants[grant.Token] = grant

	return grant, nil
}

// Consume spends token. A token is accepted once, for the key it was issued
// for, before it expires.
func (g *grantStore) Consume(ctx context.Context, key, token string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	grant, ok := g.grants[token]
	if !ok || grant.Key != key {
		return domain.ErrForbidden
	}
	delete(g.grants, token)

	if !g.now().Before(grant.ExpiresAt) {
		return domain.ErrForbidden
	}

	return nil
}

func (g *grantStore) evict() {
	now := g.now()
	for token, grant := range g.grants {
		if !now.Before(grant.ExpiresAt) {
			delete(g.grants, token)
		}
	}
}
