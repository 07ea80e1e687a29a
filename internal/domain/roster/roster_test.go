package roster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models"
)

func ref(id uuid.UUID) *uuid.UUID { return &id }

func student(name string, points int, group *uuid.UUID) models.Student {
	return models.Student{ID: uuid.New(), Name: name, Points: points, GroupID: group}
}

func TestAggregate_Scenario(t *testing.T) {
	g1 := uuid.New()
	s1 := student("one", 10, nil)
	s2 := student("two", 5, ref(g1))

	res := Aggregate([]models.Student{s1, s2}, []models.Group{{ID: g1, Name: "Alpha"}})

	require.Len(t, res.Groups, 1)
	alpha := res.Groups[0]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, 5, alpha.TotalPoints)
	assert.Equal(t, 1, alpha.MemberCount)
	require.Len(t, alpha.Members, 1)
	assert.Equal(t, s2.ID, alpha.Members[0].ID)

	require.Len(t, res.Unassigned, 1)
	assert.Equal(t, s1.ID, res.Unassigned[0].ID)
}

func TestAggregate_DanglingReferenceIsUnassigned(t *testing.T) {
	s := student("ghost", 3, ref(uuid.New()))

	res := Aggregate([]models.Student{s}, []models.Group{{ID: uuid.New(), Name: "Empty"}})

	require.Len(t, res.Unassigned, 1)
	assert.Equal(t, s.ID, res.Unassigned[0].ID)
	assert.Equal(t, 0, res.Groups[0].TotalPoints)
	assert.Empty(t, res.Groups[0].Members)
}

func TestAggregate_ConservesPoints(t *testing.T) {
	ga, gb := uuid.New(), uuid.New()
	students := []models.Student{
		student("a", 7, ref(ga)),
		student("b", -4, ref(ga)),
		student("c", 0, ref(gb)),
		student("d", 12, nil),
		student("e", 9, ref(uuid.New())),
	}
	groups := []models.Group{{ID: ga, Name: "A"}, {ID: gb, Name: "B"}}

	res := Aggregate(students, groups)

	want := 0
	for _, s := range students {
		want += s.Points
	}
	assert.Equal(t, want, res.TotalPoints())
	for _, g := range res.Groups {
		sum := 0
		for _, m := range g.Members {
			sum += m.Points
		}
		assert.Equal(t, sum, g.TotalPoints, g.Name)
		assert.Equal(t, len(g.Members), g.MemberCount, g.Name)
	}
}

func TestAggregate_RankingIsStable(t *testing.T) {
	ga, gb, gc := uuid.New(), uuid.New(), uuid.New()
	students := []models.Student{
		student("a", 5, ref(ga)),
		student("b", 5, ref(gb)),
		student("c", 8, ref(gc)),
	}
	groups := []models.Group{{ID: ga, Name: "A"}, {ID: gb, Name: "B"}, {ID: gc, Name: "C"}}

	first := Aggregate(students, groups)
	second := Aggregate(students, groups)

	names := func(r Result) []string {
		out := []string{}
		for _, g := range r.Groups {
			out = append(out, g.Name)
		}
		return out
	}
	assert.Equal(t, []string{"C", "A", "B"}, names(first))
	assert.Equal(t, names(first), names(second))

	ranked := first.Ranked()
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "C", ranked[0].Name)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestAggregate_DoesNotMutateInputs(t *testing.T) {
	ga := uuid.New()
	leader := uuid.New()
	students := []models.Student{student("a", 1, ref(ga)), student("b", 2, nil)}
	groups := []models.Group{{ID: ga, Name: "A", LeaderID: &leader}}
	studentsCopy := append([]models.Student(nil), students...)
	groupsCopy := append([]models.Group(nil), groups...)

	res := Aggregate(students, groups)
	*res.Groups[0].LeaderID = uuid.New()
	res.Groups[0].Members[0].Points = 99

	assert.Equal(t, studentsCopy, students)
	assert.Equal(t, groupsCopy, groups)
	assert.Equal(t, leader, *groups[0].LeaderID)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, nil)
	assert.Empty(t, res.Groups)
	assert.Empty(t, res.Unassigned)
	assert.Equal(t, 0, res.TotalPoints())
}
