package assignment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/domain/roster"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

type recordingStore struct {
	mu    sync.Mutex
	plans []Plan
	err   error
}

func (s *recordingStore) ApplyAssignment(_ context.Context, plan Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.plans = append(s.plans, plan)
	return nil
}

type blockingStore struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) ApplyAssignment(ctx context.Context, _ Plan) error {
	close(s.entered)
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fixture struct {
	owner, class uuid.UUID
	g1           uuid.UUID
	s1, s2       models.Student
	engine       *Engine
}

func newFixture() fixture {
	f := fixture{owner: uuid.New(), class: uuid.New(), g1: uuid.New()}
	f.s1 = models.Student{ID: uuid.New(), Name: "one", Points: 10, ClassID: f.class}
	g1 := f.g1
	f.s2 = models.Student{ID: uuid.New(), Name: "two", Points: 5, ClassID: f.class, GroupID: &g1}
	seed := roster.Aggregate(
		[]models.Student{f.s1, f.s2},
		[]models.Group{{ID: f.g1, Name: "Alpha", OwnerID: f.owner, ClassID: f.class}},
	)
	f.engine = New(f.owner, f.class, seed)
	return f
}

func TestMoveStudent_ThenCommit(t *testing.T) {
	f := newFixture()
	store := &recordingStore{}

	require.NoError(t, f.engine.MoveStudent(f.s1.ID, Unassigned, f.g1))
	require.NoError(t, f.engine.Commit(context.Background(), store))

	require.Len(t, store.plans, 1)
	plan := store.plans[0]
	assert.Equal(t, f.owner, plan.OwnerID)
	assert.Equal(t, f.class, plan.ClassID)
	require.Len(t, plan.Memberships, 1)
	assert.Equal(t, f.g1, plan.Memberships[0].GroupID)
	assert.ElementsMatch(t, []uuid.UUID{f.s1.ID, f.s2.ID}, plan.Memberships[0].StudentIDs)
	assert.Empty(t, plan.Unassigned)

	snap := f.engine.Snapshot()
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, 15, snap.Groups[0].TotalPoints)
	require.NotNil(t, snap.Groups[0].Members[1].GroupID)
	assert.Equal(t, f.g1, *snap.Groups[0].Members[1].GroupID)
}

func TestMoveStudent_NotInSourcePool(t *testing.T) {
	f := newFixture()

	err := f.engine.MoveStudent(f.s2.ID, Unassigned, f.g1)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotInPool)

	err = f.engine.MoveStudent(f.s1.ID, f.g1, Unassigned)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotInPool)

	snap := f.engine.Snapshot()
	assert.Len(t, snap.Unassigned, 1)
	assert.Equal(t, 1, snap.Groups[0].MemberCount)
}

func TestMoveStudent_UnknownGroups(t *testing.T) {
	f := newFixture()

	assert.ErrorIs(t, f.engine.MoveStudent(f.s1.ID, Unassigned, uuid.New()), apperrors.ErrGroupNotFound)
	assert.ErrorIs(t, f.engine.MoveStudent(f.s2.ID, uuid.New(), Unassigned), apperrors.ErrGroupNotFound)
}

func TestMoveStudent_BackToUnassigned(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.engine.MoveStudent(f.s2.ID, f.g1, Unassigned))

	snap := f.engine.Snapshot()
	assert.Equal(t, 0, snap.Groups[0].TotalPoints)
	require.Len(t, snap.Unassigned, 2)
	assert.Equal(t, f.s2.ID, snap.Unassigned[1].ID)
	assert.Nil(t, snap.Unassigned[1].GroupID)
}

func TestMoveStudent_SamePoolIsNoop(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.engine.MoveStudent(f.s2.ID, f.g1, f.g1))
	assert.Equal(t, 1, f.engine.Snapshot().Groups[0].MemberCount)
}

func TestSetLeader_Toggle(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.engine.SetLeader(f.g1, f.s2.ID))
	leader := f.engine.Snapshot().Groups[0].LeaderID
	require.NotNil(t, leader)
	assert.Equal(t, f.s2.ID, *leader)

	require.NoError(t, f.engine.SetLeader(f.g1, f.s2.ID))
	assert.Nil(t, f.engine.Snapshot().Groups[0].LeaderID)
}

func TestSetLeader_RejectsNonMember(t *testing.T) {
	f := newFixture()

	err := f.engine.SetLeader(f.g1, f.s1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	assert.Nil(t, f.engine.Snapshot().Groups[0].LeaderID)

	assert.ErrorIs(t, f.engine.SetLeader(uuid.New(), f.s2.ID), apperrors.ErrGroupNotFound)
}

func TestMovingLeaderOutClearsLeader(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.engine.SetLeader(f.g1, f.s2.ID))

	require.NoError(t, f.engine.MoveStudent(f.s2.ID, f.g1, Unassigned))

	assert.Nil(t, f.engine.Snapshot().Groups[0].LeaderID)
	assert.Nil(t, f.engine.Plan().Groups[0].LeaderID)
}

func TestNew_DropsStaleLeader(t *testing.T) {
	owner, class, gid := uuid.New(), uuid.New(), uuid.New()
	stranger := uuid.New()
	seed := roster.Aggregate(nil, []models.Group{{ID: gid, Name: "A", LeaderID: &stranger}})

	e := New(owner, class, seed)

	assert.Nil(t, e.Snapshot().Groups[0].LeaderID)
}

func TestRenameGroup(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.engine.RenameGroup(f.g1, "  Beta "))
	assert.Equal(t, "Beta", f.engine.Snapshot().Groups[0].Name)

	assert.ErrorIs(t, f.engine.RenameGroup(f.g1, "   "), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, f.engine.RenameGroup(uuid.New(), "x"), apperrors.ErrGroupNotFound)
}

func TestCreateGroup(t *testing.T) {
	f := newFixture()
	fixed := uuid.New()
	calls := 0
	e := New(f.owner, f.class, f.engine.Snapshot(), WithIDGenerator(func() uuid.UUID {
		calls++
		if calls == 1 {
			return f.g1
		}
		return fixed
	}))

	id, err := e.CreateGroup("Gamma")
	require.NoError(t, err)
	assert.Equal(t, fixed, id, "colliding ids are regenerated")

	snap := e.Snapshot()
	require.Len(t, snap.Groups, 2)
	assert.Equal(t, "Gamma", snap.Groups[1].Name)
	assert.Zero(t, snap.Groups[1].MemberCount)
	assert.Nil(t, snap.Groups[1].LeaderID)

	_, err = e.CreateGroup("")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRemoveGroup(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.engine.RemoveGroup(f.g1))

	snap := f.engine.Snapshot()
	assert.Empty(t, snap.Groups)
	assert.Len(t, snap.Unassigned, 2)

	plan := f.engine.Plan()
	assert.Equal(t, []uuid.UUID{f.g1}, plan.RemovedGroups)
	assert.ElementsMatch(t, []uuid.UUID{f.s1.ID, f.s2.ID}, plan.Unassigned)

	assert.ErrorIs(t, f.engine.RemoveGroup(f.g1), apperrors.ErrGroupNotFound)
}

func TestCommit_FailureKeepsWorkingSet(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.engine.MoveStudent(f.s1.ID, Unassigned, f.g1))
	before := f.engine.Snapshot()

	err := f.engine.Commit(context.Background(), &recordingStore{err: errors.New("connection reset")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, before, f.engine.Snapshot())

	store := &recordingStore{}
	require.NoError(t, f.engine.Commit(context.Background(), store))
	assert.Len(t, store.plans, 1)
}

func TestCommit_NotReentrant(t *testing.T) {
	f := newFixture()
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- f.engine.Commit(context.Background(), store) }()

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("commit did not reach the store")
	}

	err := f.engine.Commit(context.Background(), &recordingStore{})
	assert.ErrorIs(t, err, apperrors.ErrCommitInProgress)

	close(store.release)
	require.NoError(t, <-done)

	assert.NoError(t, f.engine.Commit(context.Background(), &recordingStore{}))
}

func TestCommit_EmptyGroupsAreKeptWithoutMemberships(t *testing.T) {
	f := newFixture()
	id, err := f.engine.CreateGroup("Empty")
	require.NoError(t, err)

	plan := f.engine.Plan()

	require.Len(t, plan.Groups, 2)
	assert.Equal(t, id, plan.Groups[1].ID)
	assert.Equal(t, f.owner, plan.Groups[1].OwnerID)
	assert.Equal(t, f.class, plan.Groups[1].ClassID)
	assert.Len(t, plan.Memberships, 1)
}
