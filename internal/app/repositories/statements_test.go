package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
)

type statement struct {
	sql  string
	args []any
}

// recordingQuerier logs every statement and answers QueryRow from rows in order
type recordingQuerier struct {
	statements []statement
	rows       []pgx.Row
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.statements = append(q.statements, statement{sql, args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.statements = append(q.statements, statement{sql, args})
	return nil, errors.New("unexpected query")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.statements = append(q.statements, statement{sql, args})
	if len(q.rows) == 0 {
		return errRow{errors.New("unexpected query row")}
	}
	row := q.rows[0]
	q.rows = q.rows[1:]
	return row
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

var placeholder = regexp.MustCompile(`\$\d+`)

func assertStatement(t *testing.T, st statement, wantSQL string, wantArgs ...any) {
	t.Helper()
	assert.Equal(t, wantSQL, st.sql)
	assert.Len(t, placeholder.FindAllString(st.sql, -1), len(st.args))
	assert.Equal(t, wantArgs, st.args)
}

func TestApplyPlan_StatementsAreScoped(t *testing.T) {
	owner, class := uuid.New(), uuid.New()
	kept, removed := uuid.New(), uuid.New()
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()

	plan := assignment.Plan{
		OwnerID:       owner,
		ClassID:       class,
		Groups:        []models.Group{{ID: kept, Name: "Alpha", OwnerID: owner, ClassID: class, LeaderID: &s1}},
		Memberships:   []assignment.Membership{{GroupID: kept, StudentIDs: []uuid.UUID{s1, s2}}},
		Unassigned:    []uuid.UUID{s3},
		RemovedGroups: []uuid.UUID{removed},
	}

	q := &recordingQuerier{}
	require.NoError(t, applyPlan(context.Background(), q, plan))
	require.Len(t, q.statements, 5)

	assertStatement(t, q.statements[0],
		"DELETE FROM groups WHERE (class_id = $1 AND user_id = $2 AND id IN ($3))",
		class.String(), owner.String(), removed)

	upsert := q.statements[1]
	assert.Contains(t, upsert.sql, "INSERT INTO groups (id,name,user_id,class_id,leader_id) VALUES ($1,$2,$3,$4,$5)")
	assert.Contains(t, upsert.sql, "WHERE groups.user_id = EXCLUDED.user_id AND groups.class_id = EXCLUDED.class_id")
	assert.Equal(t, []any{kept, "Alpha", owner, class, nil}, upsert.args)

	assertStatement(t, q.statements[2],
		"UPDATE students SET group_id = $1 WHERE (class_id = $2 AND user_id = $3 AND id IN ($4,$5))",
		pgtype.UUID{Bytes: kept, Valid: true}, class.String(), owner.String(), s1, s2)
	assertStatement(t, q.statements[3],
		"UPDATE students SET group_id = $1 WHERE (class_id = $2 AND user_id = $3 AND id IN ($4))",
		pgtype.UUID{}, class.String(), owner.String(), s3)
	assertStatement(t, q.statements[4],
		"UPDATE groups SET leader_id = $1 WHERE (class_id = $2 AND user_id = $3 AND id = $4)",
		pgtype.UUID{Bytes: s1, Valid: true}, class.String(), owner.String(), kept.String())
}

func TestApplyPlan_SkipsEmptyParts(t *testing.T) {
	q := &recordingQuerier{}
	require.NoError(t, applyPlan(context.Background(), q, assignment.Plan{OwnerID: uuid.New(), ClassID: uuid.New()}))
	assert.Empty(t, q.statements)
}

const consumeSQL = "UPDATE activation_codes SET is_used = $1, used_by = $2 WHERE code = $3 AND is_used = $4 " +
	"RETURNING id, code, is_used, valid_days, used_by, created_at"

func TestConsumeActivationCode_OnlyUnusedCodes(t *testing.T) {
	consumer, codeID := uuid.New(), uuid.New()
	q := &recordingQuerier{rows: []pgx.Row{fakeRow{values: []any{
		pgID(codeID), text("APPLE-ABC123"), pgtype.Bool{Bool: true, Valid: true},
		pgtype.Int4{Int32: 30, Valid: true}, pgID(consumer), pgtype.Timestamptz{},
	}}}}

	code, err := consumeActivationCode(context.Background(), q, "APPLE-ABC123", consumer)
	require.NoError(t, err)
	assert.Equal(t, codeID, code.ID)
	assert.Equal(t, 30, code.ValidDays)

	require.Len(t, q.statements, 1)
	assertStatement(t, q.statements[0], consumeSQL, true, consumer, "APPLE-ABC123", false)
}

func TestConsumeActivationCode_UsedOrMissing(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
		want   error
	}{
		{"already used", true, apperrors.ErrCodeAlreadyUsed},
		{"unknown", false, apperrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuerier{rows: []pgx.Row{
				errRow{pgx.ErrNoRows},
				fakeRow{values: []any{tt.exists}},
			}}

			_, err := consumeActivationCode(context.Background(), q, "APPLE-ABC123", uuid.New())
			assert.ErrorIs(t, err, tt.want)

			require.Len(t, q.statements, 2)
			assert.Equal(t, consumeSQL, q.statements[0].sql)
			assertStatement(t, q.statements[1],
				"SELECT EXISTS(SELECT 1 FROM activation_codes WHERE code = $1)", "APPLE-ABC123")
		})
	}
}
