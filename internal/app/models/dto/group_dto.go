package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/domain/roster"
)

// RankedGroupResponse is one row of the class leaderboard
type RankedGroupResponse struct {
	Rank        int       `json:"rank" example:"1"`
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" example:"Alpha"`
	MemberCount int       `json:"memberCount" example:"4"`
	TotalPoints int       `json:"totalPoints" example:"57"`
}

// LeaderboardResponse ranks the groups of a class by total points
type LeaderboardResponse struct {
	ClassID     uuid.UUID             `json:"classId"`
	Groups      []RankedGroupResponse `json:"groups"`
	Unassigned  []StudentResponse     `json:"unassigned"`
	TotalPoints int                   `json:"totalPoints" example:"120"`
}

// FromRoster builds the leaderboard of classID
func FromRoster(classID uuid.UUID, res roster.Result) LeaderboardResponse {
	ranked := res.Ranked()
	groups := make([]RankedGroupResponse, len(ranked))
	for i, g := range ranked {
		groups[i] = RankedGroupResponse{Rank: g.Rank, ID: g.ID, Name: g.Name, MemberCount: g.MemberCount, TotalPoints: g.TotalPoints}
	}
	return LeaderboardResponse{
		ClassID:     classID,
		Groups:      groups,
		Unassigned:  FromStudents(res.Unassigned),
		TotalPoints: res.TotalPoints(),
	}
}

// DraftGroupResponse is a group of the working set with its members
type DraftGroupResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name" example:"Alpha"`
	LeaderID    *uuid.UUID        `json:"leaderId,omitempty"`
	Members     []StudentResponse `json:"members"`
	MemberCount int               `json:"memberCount" example:"4"`
	TotalPoints int               `json:"totalPoints" example:"57"`
}

// DraftResponse is the current state of an uncommitted group arrangement
type DraftResponse struct {
	DraftID    uuid.UUID            `json:"draftId"`
	ClassID    uuid.UUID            `json:"classId"`
	OpenedAt   time.Time            `json:"openedAt"`
	Groups     []DraftGroupResponse `json:"groups"`
	Unassigned []StudentResponse    `json:"unassigned"`
}

// FromDraft converts a draft and its working set
func FromDraft(d *assignment.Draft) DraftResponse {
	snap := d.Engine.Snapshot()
	groups := make([]DraftGroupResponse, len(snap.Groups))
	for i, g := range snap.Groups {
		groups[i] = DraftGroupResponse{
			ID:          g.ID,
			Name:        g.Name,
			LeaderID:    g.LeaderID,
			Members:     FromStudents(g.Members),
			MemberCount: g.MemberCount,
			TotalPoints: g.TotalPoints,
		}
	}
	return DraftResponse{
		DraftID:    d.ID,
		ClassID:    d.Engine.ClassID(),
		OpenedAt:   d.OpenedAt,
		Groups:     groups,
		Unassigned: FromStudents(snap.Unassigned),
	}
}

// MoveStudentRequest moves a student between pools. An empty from or to
// addresses the unassigned pool.
type MoveStudentRequest struct {
	StudentID string `json:"studentId" binding:"required,uuid"`
	From      string `json:"from" binding:"omitempty,uuid"`
	To        string `json:"to" binding:"omitempty,uuid"`
}

// SetLeaderRequest toggles the leader of a group
type SetLeaderRequest struct {
	GroupID   string `json:"groupId" binding:"required,uuid"`
	StudentID string `json:"studentId" binding:"required,uuid"`
}

// GroupNameRequest names a new or existing group
type GroupNameRequest struct {
	Name string `json:"name" binding:"required,notblank,max=255" example:"Alpha"`
}

// CreateGroupResponse returns the id given to a new group along with the draft
type CreateGroupResponse struct {
	GroupID uuid.UUID     `json:"groupId"`
	Draft   DraftResponse `json:"draft"`
}
