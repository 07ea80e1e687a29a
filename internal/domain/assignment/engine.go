// Package assignment manages an in-progress, uncommitted rearrangement of the
// students of one class into groups, and reconciles it with the record store.
package assignment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/domain/roster"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

// Unassigned addresses the pool of students that belong to no group.
var Unassigned = uuid.Nil

// Store persists a commit plan. Implementations must apply the whole plan or nothing.
type Store interface {
	ApplyAssignment(ctx context.Context, plan Plan) error
}

// Membership lists the students that should reference GroupID after a commit
type Membership struct {
	GroupID    uuid.UUID
	StudentIDs []uuid.UUID
}

// Plan is the full intended end state of a class's grouping. Every write it
// describes is an unconditional overwrite, so re-applying a plan is safe.
type Plan struct {
	OwnerID       uuid.UUID
	ClassID       uuid.UUID
	Groups        []models.Group
	Memberships   []Membership
	Unassigned    []uuid.UUID
	RemovedGroups []uuid.UUID
}

type workingGroup struct {
	id       uuid.UUID
	name     string
	leaderID *uuid.UUID
	members  []models.Student
}

// Engine holds the working set. It is safe for use by multiple goroutines,
// but Commit is not re-entrant.
type Engine struct {
	mu         sync.Mutex
	ownerID    uuid.UUID
	classID    uuid.UUID
	groups     []*workingGroup
	unassigned []models.Student
	removed    []uuid.UUID
	committing bool
	newID      func() uuid.UUID
}

// Option customizes an Engine
type Option func(*Engine)

// WithIDGenerator overrides the identity source for new groups.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = fn }
}

// New seeds an engine from an aggregation of the class's current rows.
func New(ownerID, classID uuid.UUID, seed roster.Result, opts ...Option) *Engine {
	e := &Engine{
		ownerID:    ownerID,
		classID:    classID,
		unassigned: append([]models.Student{}, seed.Unassigned...),
		newID:      uuid.New,
	}
	for _, g := range seed.Groups {
		wg := &workingGroup{
			id:      g.ID,
			name:    g.Name,
			members: append([]models.Student{}, g.Members...),
		}
		// A stored leader that is no longer a member is dropped on load.
		if g.LeaderID != nil && indexOf(wg.members, *g.LeaderID) >= 0 {
			id := *g.LeaderID
			wg.leaderID = &id
		}
		e.groups = append(e.groups, wg)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OwnerID returns the teacher the working set belongs to.
func (e *Engine) OwnerID() uuid.UUID { return e.ownerID }

// ClassID returns the class the working set belongs to.
func (e *Engine) ClassID() uuid.UUID { return e.classID }

// MoveStudent takes a student out of the from pool (Unassigned or a group id)
// and appends it to the target pool. A student that is not in the from pool is
// reported as apperrors.ErrStudentNotInPool and nothing changes.
func (e *Engine) MoveStudent(studentID, from, target uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var dst *workingGroup
	if target != Unassigned {
		if dst = e.group(target); dst == nil {
			return fmt.Errorf("%w: target %s", apperrors.ErrGroupNotFound, target)
		}
	}

	var student models.Student
	if from == Unassigned {
		i := indexOf(e.unassigned, studentID)
		if i < 0 {
			return fmt.Errorf("%w: %s is not unassigned", apperrors.ErrStudentNotInPool, studentID)
		}
		if from == target {
			return nil
		}
		student = e.unassigned[i]
		e.unassigned = removeAt(e.unassigned, i)
	} else {
		src := e.group(from)
		if src == nil {
			return fmt.Errorf("%w: source %s", apperrors.ErrGroupNotFound, from)
		}
		i := indexOf(src.members, studentID)
		if i < 0 {
			return fmt.Errorf("%w: %s is not in group %s", apperrors.ErrStudentNotInPool, studentID, from)
		}
		if from == target {
			return nil
		}
		student = src.members[i]
		src.members = removeAt(src.members, i)
		if src.leaderID != nil && *src.leaderID == studentID {
			src.leaderID = nil
		}
	}

	if dst == nil {
		student.GroupID = nil
		e.unassigned = append(e.unassigned, student)
		return nil
	}
	gid := dst.id
	student.GroupID = &gid
	dst.members = append(dst.members, student)
	return nil
}

// SetLeader toggles the leader of a group: naming the current leader clears it,
// naming another member makes them leader. Non-members are rejected.
func (e *Engine) SetLeader(groupID, studentID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.group(groupID)
	if g == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrGroupNotFound, groupID)
	}
	if g.leaderID != nil && *g.leaderID == studentID {
		g.leaderID = nil
		return nil
	}
	if indexOf(g.members, studentID) < 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNotGroupMember, studentID)
	}
	id := studentID
	g.leaderID = &id
	return nil
}

// RenameGroup changes a group's display name.
func (e *Engine) RenameGroup(groupID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: group name cannot be empty", apperrors.ErrValidationFailed)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.group(groupID)
	if g == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrGroupNotFound, groupID)
	}
	g.name = name
	return nil
}

// CreateGroup adds an empty, leaderless group and returns its new id.
func (e *Engine) CreateGroup(name string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: group name cannot be empty", apperrors.ErrValidationFailed)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.newID()
	for id == Unassigned || e.group(id) != nil {
		id = e.newID()
	}
	e.groups = append(e.groups, &workingGroup{id: id, name: name})
	return id, nil
}

// RemoveGroup drops a group and returns its members to the unassigned pool.
// The group row is deleted on the next commit.
func (e *Engine) RemoveGroup(groupID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, g := range e.groups {
		if g.id != groupID {
			continue
		}
		for _, m := range g.members {
			m.GroupID = nil
			e.unassigned = append(e.unassigned, m)
		}
		e.groups = append(e.groups[:i], e.groups[i+1:]...)
		e.removed = append(e.removed, groupID)
		return nil
	}
	return fmt.Errorf("%w: %s", apperrors.ErrGroupNotFound, groupID)
}

// Snapshot returns a copy of the working set in working order (unranked).
func (e *Engine) Snapshot() roster.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := roster.Result{
		Groups:     make([]roster.GroupSummary, 0, len(e.groups)),
		Unassigned: append([]models.Student{}, e.unassigned...),
	}
	for _, g := range e.groups {
		sum := roster.GroupSummary{
			ID:          g.id,
			Name:        g.name,
			Members:     append([]models.Student{}, g.members...),
			MemberCount: len(g.members),
		}
		if g.leaderID != nil {
			id := *g.leaderID
			sum.LeaderID = &id
		}
		for _, m := range g.members {
			sum.TotalPoints += m.Points
		}
		out.Groups = append(out.Groups, sum)
	}
	return out
}

// Plan builds the commit plan for the current working set.
func (e *Engine) Plan() Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan()
}

func (e *Engine) plan() Plan {
	p := Plan{
		OwnerID:       e.ownerID,
		ClassID:       e.classID,
		Groups:        make([]models.Group, 0, len(e.groups)),
		RemovedGroups: append([]uuid.UUID{}, e.removed...),
	}
	for _, g := range e.groups {
		rec := models.Group{ID: g.id, Name: g.name, OwnerID: e.ownerID, ClassID: e.classID}
		if g.leaderID != nil {
			id := *g.leaderID
			rec.LeaderID = &id
		}
		p.Groups = append(p.Groups, rec)
		if len(g.members) == 0 {
			continue
		}
		ids := make([]uuid.UUID, len(g.members))
		for i, m := range g.members {
			ids[i] = m.ID
		}
		p.Memberships = append(p.Memberships, Membership{GroupID: g.id, StudentIDs: ids})
	}
	for _, s := range e.unassigned {
		p.Unassigned = append(p.Unassigned, s.ID)
	}
	return p
}

// Commit persists the whole working set through store. The working set is
// never modified by Commit, whatever the outcome, so a failed commit can be
// retried as is. A second Commit while one is running fails with
// apperrors.ErrCommitInProgress.
func (e *Engine) Commit(ctx context.Context, store Store) error {
	e.mu.Lock()
	if e.committing {
		e.mu.Unlock()
		return apperrors.ErrCommitInProgress
	}
	e.committing = true
	plan := e.plan()
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.committing = false
		e.mu.Unlock()
	}()

	if err := store.ApplyAssignment(ctx, plan); err != nil {
		return fmt.Errorf("failed to apply group assignment: %w", err)
	}
	return nil
}

func (e *Engine) group(id uuid.UUID) *workingGroup {
	for _, g := range e.groups {
		if g.id == id {
			return g
		}
	}
	return nil
}

func indexOf(students []models.Student, id uuid.UUID) int {
	for i, s := range students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(students []models.Student, i int) []models.Student {
	out := make([]models.Student, 0, len(students)-1)
	out = append(out, students[:i]...)
	return append(out, students[i+1:]...)
}
