package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/roster"
)

// scoreboard loads class rosters and pushes leaderboards to the publisher
type scoreboard struct {
	classRepo   repositories.ClassRepository
	studentRepo repositories.StudentRepository
	groupRepo   repositories.GroupRepository
	publisher   ScoreboardPublisher
	logger      zerolog.Logger
}

// load aggregates the current rows of a class owned by ownerID
func (b *scoreboard) load(ctx context.Context, ownerID, classID uuid.UUID) (roster.Result, error) {
	if _, err := b.classRepo.GetClass(ctx, ownerID, classID); err != nil {
		return roster.Result{}, err
	}
	students, err := b.studentRepo.ListStudents(ctx, ownerID, repositories.StudentFilter{ClassID: &classID})
	if err != nil {
		return roster.Result{}, err
	}
	groups, err := b.groupRepo.ListGroups(ctx, ownerID, classID)
	if err != nil {
		return roster.Result{}, err
	}
	return roster.Aggregate(students, groups), nil
}

// publish reloads the class and broadcasts its leaderboard. Failures are
// logged only; the change that triggered it is already stored.
func (b *scoreboard) publish(ctx context.Context, ownerID, classID uuid.UUID, event string) {
	res, err := b.load(ctx, ownerID, classID)
	if err != nil {
		b.logger.Warn().Err(err).Str("classID", classID.String()).Msg("Failed to reload scoreboard")
		return
	}
	b.publisher.Publish(classID, event, dto.FromRoster(classID, res))
}
