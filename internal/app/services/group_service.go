package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/domain/roster"
)

// GroupService serves class leaderboards and the group assignment drafts
type GroupService interface {
	Leaderboard(ctx context.Context, ownerID, classID uuid.UUID) (roster.Result, error)

	OpenDraft(ctx context.Context, ownerID, classID uuid.UUID) (*assignment.Draft, error)
	GetDraft(ownerID, draftID uuid.UUID) (*assignment.Draft, error)
	DiscardDraft(ownerID, draftID uuid.UUID) error

	MoveStudent(ownerID, draftID, studentID, from, to uuid.UUID) (*assignment.Draft, error)
	SetLeader(ownerID, draftID, groupID, studentID uuid.UUID) (*assignment.Draft, error)
	CreateGroup(ownerID, draftID uuid.UUID, name string) (uuid.UUID, *assignment.Draft, error)
	RenameGroup(ownerID, draftID, groupID uuid.UUID, name string) (*assignment.Draft, error)
	RemoveGroup(ownerID, draftID, groupID uuid.UUID) (*assignment.Draft, error)

	// Commit persists the draft, closes it and returns the class as reloaded
	// from storage, or the committed working set if the reload fails. A failed
	// commit leaves the draft open and unchanged.
	Commit(ctx context.Context, ownerID, draftID uuid.UUID) (roster.Result, error)
}

type groupServiceImpl struct {
	groupRepo repositories.GroupRepository
	drafts    *assignment.Registry
	board     *scoreboard
	logger    zerolog.Logger
}

// NewGroupService creates a new group service instance
func NewGroupService(
	repos *repositories.Repositories,
	drafts *assignment.Registry,
	publisher ScoreboardPublisher,
	logger zerolog.Logger,
) GroupService {
	return &groupServiceImpl{
		groupRepo: repos.Groups,
		drafts:    drafts,
		board: &scoreboard{
			classRepo:   repos.Classes,
			studentRepo: repos.Students,
			groupRepo:   repos.Groups,
			publisher:   publisherOrNoop(publisher),
			logger:      logger,
		},
		logger: logger,
	}
}

func (s *groupServiceImpl) Leaderboard(ctx context.Context, ownerID, classID uuid.UUID) (roster.Result, error) {
	return s.board.load(ctx, ownerID, classID)
}

// OpenDraft seeds a new working set from the class's stored rows
func (s *groupServiceImpl) OpenDraft(ctx context.Context, ownerID, classID uuid.UUID) (*assignment.Draft, error) {
	seed, err := s.board.load(ctx, ownerID, classID)
	if err != nil {
		return nil, err
	}
	d := s.drafts.Open(assignment.New(ownerID, classID, seed))
	s.logger.Debug().Str("draftID", d.ID.String()).Str("classID", classID.String()).Msg("Draft opened")
	return d, nil
}

func (s *groupServiceImpl) GetDraft(ownerID, draftID uuid.UUID) (*assignment.Draft, error) {
	return s.drafts.Get(ownerID, draftID)
}

func (s *groupServiceImpl) DiscardDraft(ownerID, draftID uuid.UUID) error {
	return s.drafts.Discard(ownerID, draftID)
}

// edit runs fn against the draft's engine and returns the draft on success
func (s *groupServiceImpl) edit(ownerID, draftID uuid.UUID, fn func(*assignment.Engine) error) (*assignment.Draft, error) {
	d, err := s.drafts.Get(ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(d.Engine); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *groupServiceImpl) MoveStudent(ownerID, draftID, studentID, from, to uuid.UUID) (*assignment.Draft, error) {
	return s.edit(ownerID, draftID, func(e *assignment.Engine) error {
		return e.MoveStudent(studentID, from, to)
	})
}

func (s *groupServiceImpl) SetLeader(ownerID, draftID, groupID, studentID uuid.UUID) (*assignment.Draft, error) {
	return s.edit(ownerID, draftID, func(e *assignment.Engine) error {
		return e.SetLeader(groupID, studentID)
	})
}

func (s *groupServiceImpl) CreateGroup(ownerID, draftID uuid.UUID, name string) (uuid.UUID, *assignment.Draft, error) {
	var id uuid.UUID
	d, err := s.edit(ownerID, draftID, func(e *assignment.Engine) error {
		var err error
		id, err = e.CreateGroup(name)
		return err
	})
	return id, d, err
}

func (s *groupServiceImpl) RenameGroup(ownerID, draftID, groupID uuid.UUID, name string) (*assignment.Draft, error) {
	return s.edit(ownerID, draftID, func(e *assignment.Engine) error {
		return e.RenameGroup(groupID, name)
	})
}

func (s *groupServiceImpl) RemoveGroup(ownerID, draftID, groupID uuid.UUID) (*assignment.Draft, error) {
	return s.edit(ownerID, draftID, func(e *assignment.Engine) error {
		return e.RemoveGroup(groupID)
	})
}

func (s *groupServiceImpl) Commit(ctx context.Context, ownerID, draftID uuid.UUID) (roster.Result, error) {
	d, err := s.drafts.Get(ownerID, draftID)
	if err != nil {
		return roster.Result{}, err
	}

	if err := d.Engine.Commit(ctx, s.groupRepo); err != nil {
		s.logger.Error().Err(err).Str("draftID", draftID.String()).Msg("Group assignment commit failed")
		return roster.Result{}, err
	}

	// Another request may have discarded it meanwhile; the commit stands either way.
	_ = s.drafts.Discard(ownerID, draftID)

	classID := d.Engine.ClassID()
	s.logger.Info().Str("draftID", draftID.String()).Str("classID", classID.String()).Msg("Group assignment committed")

	res, err := s.board.load(ctx, ownerID, classID)
	if err != nil {
		// The rows are written; answer with the working set that was stored.
		s.logger.Warn().Err(err).Str("classID", classID.String()).Msg("Failed to reload class after commit")
		res = d.Engine.Snapshot()
	}
	s.board.publisher.Publish(classID, EventGroupsCommitted, dto.FromRoster(classID, res))
	return res, nil
}
