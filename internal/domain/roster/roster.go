// Package roster derives group rosters, point totals and rankings from the
// normalized student and group rows of a single class.
package roster

import (
	"sort"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
)

// GroupSummary is the derived view of one group
type GroupSummary struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	LeaderID    *uuid.UUID       `json:"leaderId,omitempty"`
	Members     []models.Student `json:"members"`
	MemberCount int              `json:"memberCount"`
	TotalPoints int              `json:"totalPoints"`
}

// Result is the output of Aggregate. Groups are ranked by TotalPoints, highest first.
type Result struct {
	Groups     []GroupSummary   `json:"groups"`
	Unassigned []models.Student `json:"unassigned"`
}

// RankedGroup is a leaderboard entry
type RankedGroup struct {
	Rank        int       `json:"rank"`
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"memberCount"`
	TotalPoints int       `json:"totalPoints"`
}

// Aggregate builds a Result from the students and groups of one class.
// Students whose group reference is nil or points at no listed group are
// unassigned. Ties in TotalPoints keep the input order of groups. Neither
// input slice is modified.
func Aggregate(students []models.Student, groups []models.Group) Result {
	index := make(map[uuid.UUID]int, len(groups))
	summaries := make([]GroupSummary, len(groups))
	for i, g := range groups {
		summaries[i] = GroupSummary{
			ID:       g.ID,
			Name:     g.Name,
			LeaderID: copyID(g.LeaderID),
			Members:  []models.Student{},
		}
		if _, dup := index[g.ID]; !dup {
			index[g.ID] = i
		}
	}

	unassigned := []models.Student{}
	for _, s := range students {
		if s.GroupID == nil {
			unassigned = append(unassigned, s)
			continue
		}
		i, ok := index[*s.GroupID]
		if !ok {
			unassigned = append(unassigned, s)
			continue
		}
		summaries[i].Members = append(summaries[i].Members, s)
		summaries[i].MemberCount++
		summaries[i].TotalPoints += s.Points
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].TotalPoints > summaries[b].TotalPoints
	})

	return Result{Groups: summaries, Unassigned: unassigned}
}

// Ranked returns the leaderboard view of the result. Groups with equal
// totals get consecutive ranks in input order.
func (r Result) Ranked() []RankedGroup {
	out := make([]RankedGroup, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = RankedGroup{
			Rank:        i + 1,
			ID:          g.ID,
			Name:        g.Name,
			MemberCount: g.MemberCount,
			TotalPoints: g.TotalPoints,
		}
	}
	return out
}

// TotalPoints sums the points of every student in the result, grouped or not.
func (r Result) TotalPoints() int {
	total := 0
	for _, g := range r.Groups {
		total += g.TotalPoints
	}
	for _, s := range r.Unassigned {
		total += s.Points
	}
	return total
}

// Group looks up a summary by id.
func (r Result) Group(id uuid.UUID) (GroupSummary, bool) {
	for _, g := range r.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return GroupSummary{}, false
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
