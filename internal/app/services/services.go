package services

// Services defined in this package:
// - AuthService: activation-code registration, teacher and admin login, lock status
// - ClassService: a teacher's classes
// - StudentService: students and their points
// - GroupService: leaderboards and group assignment drafts
// - AdminService: activation codes, teacher accounts and admin credentials

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time. Services take one so expiry logic can be tested.
type Clock func() time.Time

// ScoreboardPublisher receives a class's new leaderboard whenever it changes
type ScoreboardPublisher interface {
	Publish(classID uuid.UUID, event string, payload any)
}

// Scoreboard event names
const (
	EventPointsChanged   = "points_changed"
	EventGroupsCommitted = "groups_committed"
)

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, string, any) {}

func publisherOrNoop(p ScoreboardPublisher) ScoreboardPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
