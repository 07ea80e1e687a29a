package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

type groupFixture struct {
	env     *testEnv
	svc     GroupService
	owner   uuid.UUID
	classID uuid.UUID
	alpha   uuid.UUID
	s1, s2  uuid.UUID
}

// newGroupFixture builds a class with s1 (10 points, unassigned) and s2
// (5 points, in Alpha).
func newGroupFixture(t *testing.T) groupFixture {
	t.Helper()
	env := newTestEnv()
	owner := env.teacher(t, "teacher", "secret1", nil).ID
	class := env.class(t, owner, "3A")
	alpha := env.store.PutGroup(models.Group{Name: "Alpha", OwnerID: owner, ClassID: class.ID}).ID
	s1 := env.student(t, owner, class.ID, "one", 10, nil)
	s2 := env.student(t, owner, class.ID, "two", 5, &alpha)

	return groupFixture{
		env:     env,
		svc:     NewGroupService(env.repos, assignment.NewRegistry(0), env.pub, nopLogger),
		owner:   owner,
		classID: class.ID,
		alpha:   alpha,
		s1:      s1.ID,
		s2:      s2.ID,
	}
}

func TestLeaderboard(t *testing.T) {
	f := newGroupFixture(t)
	beta := f.env.store.PutGroup(models.Group{Name: "Beta", OwnerID: f.owner, ClassID: f.classID}).ID
	f.env.student(t, f.owner, f.classID, "three", 8, &beta)

	res, err := f.svc.Leaderboard(context.Background(), f.owner, f.classID)
	require.NoError(t, err)

	ranked := res.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "Beta", ranked[0].Name)
	assert.Equal(t, 8, ranked[0].TotalPoints)
	assert.Equal(t, "Alpha", ranked[1].Name)
	assert.Equal(t, 23, res.TotalPoints())
	require.Len(t, res.Unassigned, 1)
	assert.Equal(t, f.s1, res.Unassigned[0].ID)
}

func TestLeaderboard_OtherTeachersClass(t *testing.T) {
	f := newGroupFixture(t)
	_, err := f.svc.Leaderboard(context.Background(), uuid.New(), f.classID)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestDraft_MoveCommitReload(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	d, err := f.svc.OpenDraft(ctx, f.owner, f.classID)
	require.NoError(t, err)

	_, err = f.svc.MoveStudent(f.owner, d.ID, f.s1, assignment.Unassigned, f.alpha)
	require.NoError(t, err)
	_, err = f.svc.SetLeader(f.owner, d.ID, f.alpha, f.s1)
	require.NoError(t, err)

	res, err := f.svc.Commit(ctx, f.owner, d.ID)
	require.NoError(t, err)

	alpha, ok := res.Group(f.alpha)
	require.True(t, ok)
	assert.Equal(t, 2, alpha.MemberCount)
	assert.Equal(t, 15, alpha.TotalPoints)
	require.NotNil(t, alpha.LeaderID)
	assert.Equal(t, f.s1, *alpha.LeaderID)
	assert.Empty(t, res.Unassigned)

	_, err = f.svc.GetDraft(f.owner, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)

	last := f.env.pub.last()
	assert.Equal(t, f.classID, last.classID)
	assert.Equal(t, EventGroupsCommitted, last.event)
	board, ok := last.payload.(dto.LeaderboardResponse)
	require.True(t, ok)
	assert.Equal(t, 15, board.TotalPoints)
}

func TestDraft_CommitFailureKeepsDraft(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	d, err := f.svc.OpenDraft(ctx, f.owner, f.classID)
	require.NoError(t, err)
	_, err = f.svc.MoveStudent(f.owner, d.ID, f.s2, f.alpha, assignment.Unassigned)
	require.NoError(t, err)

	f.env.store.FailNextApply(errors.New("connection reset"))
	_, err = f.svc.Commit(ctx, f.owner, d.ID)
	require.Error(t, err)

	kept, err := f.svc.GetDraft(f.owner, d.ID)
	require.NoError(t, err)
	assert.Len(t, kept.Engine.Snapshot().Unassigned, 2)

	stored, err := f.env.repos.Students.GetStudent(ctx, f.owner, f.s2)
	require.NoError(t, err)
	assert.True(t, stored.InGroup(f.alpha))

	res, err := f.svc.Commit(ctx, f.owner, d.ID)
	require.NoError(t, err)
	assert.Len(t, res.Unassigned, 2)
}

func TestDraft_CreateRenameRemove(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	d, err := f.svc.OpenDraft(ctx, f.owner, f.classID)
	require.NoError(t, err)

	beta, _, err := f.svc.CreateGroup(f.owner, d.ID, "Beta")
	require.NoError(t, err)
	_, err = f.svc.RenameGroup(f.owner, d.ID, beta, "Bravo")
	require.NoError(t, err)
	_, err = f.svc.MoveStudent(f.owner, d.ID, f.s1, assignment.Unassigned, beta)
	require.NoError(t, err)
	_, err = f.svc.RemoveGroup(f.owner, d.ID, f.alpha)
	require.NoError(t, err)

	_, _, err = f.svc.CreateGroup(f.owner, d.ID, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	res, err := f.svc.Commit(ctx, f.owner, d.ID)
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, beta, res.Groups[0].ID)
	assert.Equal(t, "Bravo", res.Groups[0].Name)
	assert.Equal(t, 10, res.Groups[0].TotalPoints)
	require.Len(t, res.Unassigned, 1)
	assert.Equal(t, f.s2, res.Unassigned[0].ID)
}

func TestDraft_ScopedToOwner(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()
	stranger := uuid.New()

	_, err := f.svc.OpenDraft(ctx, stranger, f.classID)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	d, err := f.svc.OpenDraft(ctx, f.owner, f.classID)
	require.NoError(t, err)

	_, err = f.svc.GetDraft(stranger, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	_, err = f.svc.MoveStudent(stranger, d.ID, f.s1, assignment.Unassigned, f.alpha)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
	_, err = f.svc.Commit(ctx, stranger, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)

	assert.ErrorIs(t, f.svc.DiscardDraft(stranger, d.ID), apperrors.ErrDraftNotFound)
	require.NoError(t, f.svc.DiscardDraft(f.owner, d.ID))
	_, err = f.svc.GetDraft(f.owner, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
}

func TestDraft_EngineErrorsPassThrough(t *testing.T) {
	f := newGroupFixture(t)

	d, err := f.svc.OpenDraft(context.Background(), f.owner, f.classID)
	require.NoError(t, err)

	_, err = f.svc.MoveStudent(f.owner, d.ID, f.s1, f.alpha, assignment.Unassigned)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotInPool)
	_, err = f.svc.SetLeader(f.owner, d.ID, f.alpha, f.s1)
	assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
	_, err = f.svc.RemoveGroup(f.owner, d.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
}

// reloadFailingGroups stores assignments but fails every listing after a commit
type reloadFailingGroups struct {
	repositories.GroupRepository
	committed bool
}

func (g *reloadFailingGroups) ApplyAssignment(ctx context.Context, plan assignment.Plan) error {
	if err := g.GroupRepository.ApplyAssignment(ctx, plan); err != nil {
		return err
	}
	g.committed = true
	return nil
}

func (g *reloadFailingGroups) ListGroups(ctx context.Context, ownerID, classID uuid.UUID) ([]models.Group, error) {
	if g.committed {
		return nil, errors.New("connection reset")
	}
	return g.GroupRepository.ListGroups(ctx, ownerID, classID)
}

func TestDraft_CommitSucceedsWhenReloadFails(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	repos := *f.env.repos
	repos.Groups = &reloadFailingGroups{GroupRepository: f.env.repos.Groups}
	svc := NewGroupService(&repos, assignment.NewRegistry(0), f.env.pub, nopLogger)

	d, err := svc.OpenDraft(ctx, f.owner, f.classID)
	require.NoError(t, err)
	_, err = svc.MoveStudent(f.owner, d.ID, f.s1, assignment.Unassigned, f.alpha)
	require.NoError(t, err)

	res, err := svc.Commit(ctx, f.owner, d.ID)
	require.NoError(t, err)
	alpha, ok := res.Group(f.alpha)
	require.True(t, ok)
	assert.Equal(t, 15, alpha.TotalPoints)
	assert.Empty(t, res.Unassigned)

	stored, err := f.env.repos.Students.GetStudent(ctx, f.owner, f.s1)
	require.NoError(t, err)
	assert.True(t, stored.InGroup(f.alpha))

	assert.Equal(t, EventGroupsCommitted, f.env.pub.last().event)
	_, err = svc.GetDraft(f.owner, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrDraftNotFound)
}
