package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/app/repositories/memstore"
	"github.com/yigit/pointsboard/internal/pkg/auth"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type published struct {
	classID uuid.UUID
	event   string
	payload any
}

// recordingPublisher captures scoreboard pushes
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(classID uuid.UUID, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{classID: classID, event: event, payload: payload})
}

func (p *recordingPublisher) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type testEnv struct {
	store *memstore.Store
	repos *repositories.Repositories
	jwt   *auth.JWTService
	pub   *recordingPublisher
}

func newTestEnv() *testEnv {
	store := memstore.New()
	return &testEnv{
		store: store,
		repos: store.Repositories(),
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenExp: time.Hour,
			TokenIssuer:    "pointsboard-test",
		}),
		pub: &recordingPublisher{},
	}
}

func (e *testEnv) teacher(t *testing.T, username, password string, expireAt *time.Time) models.Profile {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return e.store.PutProfile(models.Profile{
		FullName:     username,
		Username:     username,
		PasswordHash: hash,
		ExpireAt:     expireAt,
	})
}

func (e *testEnv) class(t *testing.T, ownerID uuid.UUID, name string) *models.Class {
	t.Helper()
	c := &models.Class{Name: name, OwnerID: ownerID}
	require.NoError(t, e.repos.Classes.CreateClass(context.Background(), c))
	return c
}

func (e *testEnv) student(t *testing.T, ownerID, classID uuid.UUID, name string, points int, groupID *uuid.UUID) *models.Student {
	t.Helper()
	s := &models.Student{Name: name, Points: points, OwnerID: ownerID, ClassID: classID, GroupID: groupID}
	require.NoError(t, e.repos.Students.CreateStudent(context.Background(), s))
	return s
}

var nopLogger = zerolog.Nop()
