package assignment

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

// Draft is a server-held working set opened by one teacher for one class
type Draft struct {
	ID       uuid.UUID
	Engine   *Engine
	OpenedAt time.Time
	lastUsed time.Time
}

// Registry keeps drafts between requests. Idle drafts are evicted lazily.
type Registry struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*Draft
	ttl    time.Duration
	now    func() time.Time
}

// NewRegistry creates a registry whose drafts expire after ttl of inactivity.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		drafts: make(map[uuid.UUID]*Draft),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Open registers engine as a new draft.
func (r *Registry) Open(engine *Engine) *Draft {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()
	now := r.now()
	d := &Draft{ID: uuid.New(), Engine: engine, OpenedAt: now, lastUsed: now}
	r.drafts[d.ID] = d
	return d
}

// Get returns the draft if it exists, has not expired and belongs to ownerID.
func (r *Registry) Get(ownerID, draftID uuid.UUID) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[draftID]
	if !ok || d.Engine.OwnerID() != ownerID {
		return nil, apperrors.ErrDraftNotFound
	}
	if r.expired(d) {
		delete(r.drafts, draftID)
		return nil, apperrors.ErrDraftNotFound
	}
	d.lastUsed = r.now()
	return d, nil
}

// Discard removes a draft owned by ownerID.
func (r *Registry) Discard(ownerID, draftID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[draftID]
	if !ok || d.Engine.OwnerID() != ownerID {
		return apperrors.ErrDraftNotFound
	}
	delete(r.drafts, draftID)
	return nil
}

// Len returns the number of live drafts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	return len(r.drafts)
}

func (r *Registry) sweep() {
	for id, d := range r.drafts {
		if r.expired(d) {
			delete(r.drafts, id)
		}
	}
}

func (r *Registry) expired(d *Draft) bool {
	return r.ttl > 0 && r.now().Sub(d.lastUsed) > r.ttl
}
