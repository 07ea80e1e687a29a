package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/domain/roster"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

func TestRegistry_OpenGet(t *testing.T) {
	owner := uuid.New()
	r := NewRegistry(time.Minute)

	d := r.Open(New(owner, uuid.New(), roster.Result{}))

	got, err := r.Get(owner, d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)

	_, err = r.Get(uuid.New(), d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
}

func TestRegistry_Discard(t *testing.T) {
	owner := uuid.New()
	r := NewRegistry(time.Minute)
	d := r.Open(New(owner, uuid.New(), roster.Result{}))

	assert.ErrorIs(t, r.Discard(uuid.New(), d.ID), apperrors.ErrDraftNotFound)
	require.NoError(t, r.Discard(owner, d.ID))

	_, err := r.Get(owner, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	assert.Zero(t, r.Len())
}

func TestRegistry_ExpiresIdleDrafts(t *testing.T) {
	owner := uuid.New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	stale := r.Open(New(owner, uuid.New(), roster.Result{}))
	now = now.Add(6 * time.Minute)
	fresh := r.Open(New(owner, uuid.New(), roster.Result{}))
	now = now.Add(6 * time.Minute)

	_, err := r.Get(owner, stale.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)

	_, err = r.Get(owner, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}
