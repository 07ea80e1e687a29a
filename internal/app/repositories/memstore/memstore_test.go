package memstore

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
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/domain/roster"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

type classFixture struct {
	store        *Store
	owner, class uuid.UUID
	g1           uuid.UUID
	s1, s2       uuid.UUID
}

func newClassFixture(t *testing.T) classFixture {
	t.Helper()
	ctx := context.Background()
	st := New()
	owner := st.PutProfile(models.Profile{Username: "teacher"}).ID

	class := &models.Class{Name: "3A", OwnerID: owner}
	require.NoError(t, st.CreateClass(ctx, class))

	g1 := st.PutGroup(models.Group{Name: "Alpha", OwnerID: owner, ClassID: class.ID})

	s1 := &models.Student{Name: "one", Points: 10, OwnerID: owner, ClassID: class.ID}
	require.NoError(t, st.CreateStudent(ctx, s1))
	gid := g1.ID
	s2 := &models.Student{Name: "two", Points: 5, OwnerID: owner, ClassID: class.ID, GroupID: &gid}
	require.NoError(t, st.CreateStudent(ctx, s2))

	return classFixture{store: st, owner: owner, class: class.ID, g1: g1.ID, s1: s1.ID, s2: s2.ID}
}

func (f classFixture) load(t *testing.T) roster.Result {
	t.Helper()
	ctx := context.Background()
	students, err := f.store.ListStudents(ctx, f.owner, repositories.StudentFilter{ClassID: &f.class})
	require.NoError(t, err)
	groups, err := f.store.ListGroups(ctx, f.owner, f.class)
	require.NoError(t, err)
	return roster.Aggregate(students, groups)
}

func TestAssignmentRoundTrip(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()

	engine := assignment.New(f.owner, f.class, f.load(t))
	require.NoError(t, engine.MoveStudent(f.s1, assignment.Unassigned, f.g1))
	require.NoError(t, engine.SetLeader(f.g1, f.s1))
	require.NoError(t, engine.Commit(ctx, f.store))

	reloaded := f.load(t)
	require.Len(t, reloaded.Groups, 1)
	alpha := reloaded.Groups[0]
	assert.Equal(t, 15, alpha.TotalPoints)
	assert.Equal(t, 2, alpha.MemberCount)
	require.NotNil(t, alpha.LeaderID)
	assert.Equal(t, f.s1, *alpha.LeaderID)
	assert.Empty(t, reloaded.Unassigned)

	s1, err := f.store.GetStudent(ctx, f.owner, f.s1)
	require.NoError(t, err)
	require.NotNil(t, s1.GroupID)
	assert.Equal(t, f.g1, *s1.GroupID)

	snap := engine.Snapshot()
	assert.Equal(t, snap.TotalPoints(), reloaded.TotalPoints())
}

func TestApplyAssignment_NewAndRemovedGroups(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()

	engine := assignment.New(f.owner, f.class, f.load(t))
	beta, err := engine.CreateGroup("Beta")
	require.NoError(t, err)
	require.NoError(t, engine.MoveStudent(f.s2, f.g1, beta))
	require.NoError(t, engine.RemoveGroup(f.g1))
	require.NoError(t, engine.Commit(ctx, f.store))

	reloaded := f.load(t)
	require.Len(t, reloaded.Groups, 1)
	assert.Equal(t, "Beta", reloaded.Groups[0].Name)
	assert.Equal(t, 5, reloaded.Groups[0].TotalPoints)
	require.Len(t, reloaded.Unassigned, 1)
	assert.Equal(t, f.s1, reloaded.Unassigned[0].ID)
}

func TestApplyAssignment_IgnoresOtherOwners(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()

	intruder := assignment.Plan{
		OwnerID:     uuid.New(),
		ClassID:     f.class,
		Groups:      []models.Group{{ID: f.g1, Name: "Hijacked"}},
		Unassigned:  []uuid.UUID{f.s2},
		Memberships: nil,
	}
	require.NoError(t, f.store.ApplyAssignment(ctx, intruder))

	reloaded := f.load(t)
	assert.Equal(t, "Alpha", reloaded.Groups[0].Name)
	assert.Equal(t, 1, reloaded.Groups[0].MemberCount)
}

func TestApplyAssignment_InjectedFailureWritesNothing(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()
	before := f.load(t)

	engine := assignment.New(f.owner, f.class, before)
	require.NoError(t, engine.MoveStudent(f.s1, assignment.Unassigned, f.g1))
	f.store.FailNextApply(errors.New("network down"))

	require.Error(t, engine.Commit(ctx, f.store))
	assert.Equal(t, before, f.load(t))

	require.NoError(t, engine.Commit(ctx, f.store))
	assert.Equal(t, 15, f.load(t).Groups[0].TotalPoints)
}

func TestDeleteClass_RefusesNonEmpty(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.store.DeleteClass(ctx, f.owner, f.class), apperrors.ErrClassNotEmpty)

	require.NoError(t, f.store.DeleteStudent(ctx, f.owner, f.s1))
	require.NoError(t, f.store.DeleteStudent(ctx, f.owner, f.s2))
	require.NoError(t, f.store.DeleteClass(ctx, f.owner, f.class))

	groups, err := f.store.ListGroups(ctx, f.owner, f.class)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestListStudents_FilterAndOrder(t *testing.T) {
	f := newClassFixture(t)
	ctx := context.Background()

	all, err := f.store.ListStudents(ctx, f.owner, repositories.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, f.s1, all[0].ID)

	named, err := f.store.ListStudents(ctx, f.owner, repositories.StudentFilter{NameContains: "TW"})
	require.NoError(t, err)
	require.Len(t, named, 1)
	assert.Equal(t, f.s2, named[0].ID)

	other, err := f.store.ListStudents(ctx, uuid.New(), repositories.StudentFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRegisterWithCode_SingleUse(t *testing.T) {
	st := New()
	ctx := context.Background()
	require.NoError(t, st.CreateActivationCode(ctx, &models.ActivationCode{Code: "APPLE-AAAAAA", ValidDays: 30}))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := &models.Profile{FullName: "T", Username: uuid.NewString(), PasswordHash: "x"}
			_, errs[i] = st.RegisterWithCode(ctx, p, "APPLE-AAAAAA", time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrCodeAlreadyUsed)
	}
	assert.Equal(t, 1, succeeded)

	profiles, total, err := st.ListProfiles(ctx, "", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, profiles, 1)
}

func TestRegisterWithCode_SetsExpiry(t *testing.T) {
	st := New()
	ctx := context.Background()
	require.NoError(t, st.CreateActivationCode(ctx, &models.ActivationCode{Code: "APPLE-BBBBBB", ValidDays: 7}))
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	p := &models.Profile{FullName: "T", Username: "li", PasswordHash: "x"}
	code, err := st.RegisterWithCode(ctx, p, "APPLE-BBBBBB", now)
	require.NoError(t, err)

	require.NotNil(t, p.ExpireAt)
	assert.Equal(t, now.AddDate(0, 0, 7), *p.ExpireAt)
	assert.True(t, code.IsUsed)

	byConsumer, err := st.GetActivationCodeByConsumer(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, byConsumer.UsedByUsername)
	assert.Equal(t, "li", *byConsumer.UsedByUsername)

	_, err = st.RegisterWithCode(ctx, &models.Profile{Username: "li"}, "APPLE-BBBBBB", now)
	assert.ErrorIs(t, err, apperrors.ErrUsernameExists)
	_, err = st.RegisterWithCode(ctx, &models.Profile{Username: "other"}, "APPLE-NOPE00", now)
	assert.ErrorIs(t, err, apperrors.ErrCodeNotFound)
}

func TestListProfiles_SearchAndPage(t *testing.T) {
	st := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"alice", "bob", "Alina", "carol"} {
		st.PutProfile(models.Profile{Username: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	st.PutProfile(models.Profile{Username: "admin-ali", Role: models.RoleAdmin})

	found, total, err := st.ListProfiles(ctx, "ALI", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, found, 2)
	assert.Equal(t, "Alina", found[0].Username)

	page2, total, err := st.ListProfiles(ctx, "", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "alice", page2[0].Username)
}
