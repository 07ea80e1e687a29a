package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
	"github.com/yigit/pointsboard/internal/pkg/logger"
)

// PgGroupRepository handles database operations for groups
type PgGroupRepository struct {
	db *db.PostgresDB
}

// NewGroupRepository creates a new PgGroupRepository
func NewGroupRepository(database *db.PostgresDB) *PgGroupRepository {
	return &PgGroupRepository{db: database}
}

// ListGroups returns the owner's groups of one class
func (r *PgGroupRepository) ListGroups(ctx context.Context, ownerID, classID uuid.UUID) ([]models.Group, error) {
	sql, args, err := psql.Select(groupColumns...).From("groups").
		Where(squirrel.Eq{"user_id": ownerID, "class_id": classID}).
		OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group list query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	groups, err := scanAll[models.Group, groupRow](rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups: %w", err)
	}
	return groups, nil
}

// ApplyAssignment writes a committed plan in one transaction
func (r *PgGroupRepository) ApplyAssignment(ctx context.Context, plan assignment.Plan) error {
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return applyPlan(ctx, tx, plan)
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("ownerID", plan.OwnerID.String()).
		Str("classID", plan.ClassID.String()).
		Int("groups", len(plan.Groups)).
		Int("removed", len(plan.RemovedGroups)).
		Msg("Group assignment applied")
	return nil
}

// applyPlan deletes removed groups, upserts the remaining ones, then overwrites
// every student's group reference. Every statement is scoped to the plan's
// owner and class.
func applyPlan(ctx context.Context, q querier, plan assignment.Plan) error {
	scope := squirrel.Eq{"user_id": plan.OwnerID, "class_id": plan.ClassID}

	if len(plan.RemovedGroups) > 0 {
		sql, args, err := psql.Delete("groups").
			Where(squirrel.And{scope, squirrel.Eq{"id": plan.RemovedGroups}}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build group delete: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to delete removed groups: %w", err)
		}
	}

	for _, g := range plan.Groups {
		if err := upsertGroup(ctx, q, g); err != nil {
			return err
		}
	}

	for _, m := range plan.Memberships {
		if err := setGroupRef(ctx, q, scope, m.StudentIDs, &m.GroupID); err != nil {
			return err
		}
	}
	if err := setGroupRef(ctx, q, scope, plan.Unassigned, nil); err != nil {
		return err
	}

	// Leaders go last so each one already references a member of its group.
	for _, g := range plan.Groups {
		sql, args, err := psql.Update("groups").Set("leader_id", helpers.PgUUID(g.LeaderID)).
			Where(squirrel.And{scope, squirrel.Eq{"id": g.ID}}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build leader update: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to set leader of group %s: %w", g.ID, err)
		}
	}
	return nil
}

// upsertGroup writes id, name and ownership. The leader is written separately.
func upsertGroup(ctx context.Context, q querier, g models.Group) error {
	sql, args, err := psql.Insert("groups").
		Columns("id", "name", "user_id", "class_id", "leader_id").
		Values(g.ID, g.Name, g.OwnerID, g.ClassID, nil).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name WHERE groups.user_id = EXCLUDED.user_id AND groups.class_id = EXCLUDED.class_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build group upsert: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert group %s: %w", g.ID, err)
	}
	return nil
}

func setGroupRef(ctx context.Context, q querier, scope squirrel.Eq, studentIDs []uuid.UUID, groupID *uuid.UUID) error {
	if len(studentIDs) == 0 {
		return nil
	}
	sql, args, err := psql.Update("students").Set("group_id", helpers.PgUUID(groupID)).
		Where(squirrel.And{scope, squirrel.Eq{"id": studentIDs}}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build group reference update: %w", err)
	}
	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update group references: %w", err)
	}
	return nil
}
