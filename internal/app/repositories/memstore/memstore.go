// Package memstore is an in-memory record store. It implements every
// repository interface and is used by tests and the "memory" storage driver.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/pointsboard/internal/app/models"
	"github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	"github.com/yigit/pointsboard/internal/pkg/apperrors"
	"github.com/yigit/pointsboard/internal/pkg/helpers"
)

// Store keeps all tables in maps guarded by one lock
type Store struct {
	mu sync.RWMutex

	profiles map[uuid.UUID]*models.Profile
	classes  map[uuid.UUID]*models.Class
	students map[uuid.UUID]*models.Student
	groups   map[uuid.UUID]*models.Group
	codes    map[uuid.UUID]*models.ActivationCode
	admin    *models.AdminSettings

	// insertion order, used to break ordering ties the way created_at does
	seq   map[uuid.UUID]int
	clock int

	failApply error
}

// New returns an empty store
func New() *Store {
	return &Store{
		profiles: make(map[uuid.UUID]*models.Profile),
		classes:  make(map[uuid.UUID]*models.Class),
		students: make(map[uuid.UUID]*models.Student),
		groups:   make(map[uuid.UUID]*models.Group),
		codes:    make(map[uuid.UUID]*models.ActivationCode),
		seq:      make(map[uuid.UUID]int),
	}
}

// Repositories exposes the store through the repository container
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Profiles:        s,
		Classes:         s,
		Students:        s,
		Groups:          s,
		ActivationCodes: s,
		AdminSettings:   s,
	}
}

// FailNextApply makes the next ApplyAssignment return err without writing anything
func (s *Store) FailNextApply(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failApply = err
}

func (s *Store) stamp(id uuid.UUID) {
	s.clock++
	s.seq[id] = s.clock
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// --- profiles ---

// GetProfile retrieves a profile by id
func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

// GetProfileByUsername retrieves a profile by its login handle
func (s *Store) GetProfileByUsername(_ context.Context, username string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Username == username {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrProfileNotFound
}

// UpdateProfileExpiry overwrites a teacher's expiration timestamp
func (s *Store) UpdateProfileExpiry(_ context.Context, id uuid.UUID, expireAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	p.ExpireAt = &expireAt
	return nil
}

// ListProfiles returns one page of teachers, newest first, filtered by username
func (s *Store) ListProfiles(_ context.Context, search string, page, size int) ([]models.Profile, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(search)
	var all []models.Profile
	for _, p := range s.profiles {
		if p.Role != models.RoleTeacher || !strings.Contains(strings.ToLower(p.Username), needle) {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return s.seq[all[i].ID] > s.seq[all[j].ID]
	})

	start, end := helpers.CalculateSliceIndices(page, size, len(all))
	return append([]models.Profile{}, all[start:end]...), len(all), nil
}

// DeleteProfile removes a teacher together with everything they own
func (s *Store) DeleteProfile(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok || p.Role != models.RoleTeacher {
		return apperrors.ErrProfileNotFound
	}
	delete(s.profiles, id)
	for sid, st := range s.students {
		if st.OwnerID == id {
			delete(s.students, sid)
		}
	}
	for gid, g := range s.groups {
		if g.OwnerID == id {
			delete(s.groups, gid)
		}
	}
	for cid, c := range s.classes {
		if c.OwnerID == id {
			delete(s.classes, cid)
		}
	}
	for _, c := range s.codes {
		if c.UsedBy != nil && *c.UsedBy == id {
			c.UsedBy = nil
		}
	}
	return nil
}

// RegisterWithCode creates the profile and consumes the code atomically
func (s *Store) RegisterWithCode(_ context.Context, profile *models.Profile, code string, now time.Time) (*models.ActivationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.Username == profile.Username {
			return nil, apperrors.ErrUsernameExists
		}
	}
	var ac *models.ActivationCode
	for _, c := range s.codes {
		if c.Code == code {
			ac = c
			break
		}
	}
	if ac == nil {
		return nil, apperrors.ErrCodeNotFound
	}
	if ac.IsUsed {
		return nil, apperrors.ErrCodeAlreadyUsed
	}

	ensureID(&profile.ID)
	profile.Role = models.RoleTeacher
	profile.CreatedAt = now
	expireAt := helpers.AddDays(now, ac.ValidDays)
	profile.ExpireAt = &expireAt

	stored := *profile
	s.profiles[profile.ID] = &stored
	s.stamp(profile.ID)

	consumer := profile.ID
	ac.IsUsed = true
	ac.UsedBy = &consumer

	out := *ac
	return &out, nil
}

// PutProfile stores a profile as is. Used to seed fixtures.
func (s *Store) PutProfile(p models.Profile) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&p.ID)
	if p.Role == "" {
		p.Role = models.RoleTeacher
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.profiles[p.ID] = &p
	s.stamp(p.ID)
	return p
}

// --- classes ---

// CreateClass inserts a class
func (s *Store) CreateClass(_ context.Context, class *models.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&class.ID)
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now()
	}
	cp := *class
	s.classes[class.ID] = &cp
	s.stamp(class.ID)
	return nil
}

// GetClass retrieves one of the owner's classes
func (s *Store) GetClass(_ context.Context, ownerID, id uuid.UUID) (*models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[id]
	if !ok || c.OwnerID != ownerID {
		return nil, apperrors.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

// ListClasses returns the owner's classes in creation order
func (s *Store) ListClasses(_ context.Context, ownerID uuid.UUID) ([]models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Class, 0)
	for _, c := range s.classes {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

// UpdateClass renames one of the owner's classes
func (s *Store) UpdateClass(_ context.Context, ownerID, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok || c.OwnerID != ownerID {
		return apperrors.ErrClassNotFound
	}
	c.Name = name
	return nil
}

// DeleteClass removes one of the owner's classes and its groups.
// Like the foreign key it refuses a class that still has students.
func (s *Store) DeleteClass(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok || c.OwnerID != ownerID {
		return apperrors.ErrClassNotFound
	}
	for _, st := range s.students {
		if st.ClassID == id {
			return apperrors.ErrClassNotEmpty
		}
	}
	for gid, g := range s.groups {
		if g.ClassID == id {
			delete(s.groups, gid)
		}
	}
	delete(s.classes, id)
	return nil
}

// CountStudents counts the students of one of the owner's classes
func (s *Store) CountStudents(_ context.Context, ownerID, classID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, st := range s.students {
		if st.OwnerID == ownerID && st.ClassID == classID {
			n++
		}
	}
	return n, nil
}

// --- students ---

// CreateStudent inserts a student
func (s *Store) CreateStudent(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[student.ClassID]; !ok {
		return apperrors.ErrClassNotFound
	}
	ensureID(&student.ID)
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now()
	}
	cp := *student
	s.students[student.ID] = &cp
	s.stamp(student.ID)
	return nil
}

// GetStudent retrieves one of the owner's students
func (s *Store) GetStudent(_ context.Context, ownerID, id uuid.UUID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok || st.OwnerID != ownerID {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *st
	return &cp, nil
}

// ListStudents returns the owner's students ordered by points, highest first
func (s *Store) ListStudents(_ context.Context, ownerID uuid.UUID, filter repositories.StudentFilter) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.NameContains))
	out := make([]models.Student, 0)
	for _, st := range s.students {
		if st.OwnerID != ownerID {
			continue
		}
		if filter.ClassID != nil && st.ClassID != *filter.ClassID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(st.Name), needle) {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

// DeleteStudent removes one of the owner's students and clears any leadership it held
func (s *Store) DeleteStudent(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok || st.OwnerID != ownerID {
		return apperrors.ErrStudentNotFound
	}
	delete(s.students, id)
	for _, g := range s.groups {
		if g.LeaderID != nil && *g.LeaderID == id {
			g.LeaderID = nil
		}
	}
	return nil
}

// AdjustPoints adds delta to a student's points
func (s *Store) AdjustPoints(_ context.Context, ownerID, id uuid.UUID, delta int) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok || st.OwnerID != ownerID {
		return nil, apperrors.ErrStudentNotFound
	}
	st.Points += delta
	cp := *st
	return &cp, nil
}

// RenameStudent changes a student's name
func (s *Store) RenameStudent(_ context.Context, ownerID, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok || st.OwnerID != ownerID {
		return apperrors.ErrStudentNotFound
	}
	st.Name = name
	return nil
}

// --- groups ---

// ListGroups returns the owner's groups of one class ordered by name
func (s *Store) ListGroups(_ context.Context, ownerID, classID uuid.UUID) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Group, 0)
	for _, g := range s.groups {
		if g.OwnerID == ownerID && g.ClassID == classID {
			cp := *g
			if g.LeaderID != nil {
				id := *g.LeaderID
				cp.LeaderID = &id
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

// ApplyAssignment writes a plan atomically, with the same scoping rules as PostgreSQL
func (s *Store) ApplyAssignment(_ context.Context, plan assignment.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failApply; err != nil {
		s.failApply = nil
		return err
	}

	inScope := func(owner, class uuid.UUID) bool {
		return owner == plan.OwnerID && class == plan.ClassID
	}

	for _, id := range plan.RemovedGroups {
		if g, ok := s.groups[id]; ok && inScope(g.OwnerID, g.ClassID) {
			delete(s.groups, id)
			for _, st := range s.students {
				if st.GroupID != nil && *st.GroupID == id {
					st.GroupID = nil
				}
			}
		}
	}

	for _, g := range plan.Groups {
		if existing, ok := s.groups[g.ID]; ok {
			if inScope(existing.OwnerID, existing.ClassID) {
				existing.Name = g.Name
			}
			continue
		}
		s.groups[g.ID] = &models.Group{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID, ClassID: g.ClassID}
		s.stamp(g.ID)
	}

	setRef := func(ids []uuid.UUID, groupID *uuid.UUID) {
		for _, id := range ids {
			st, ok := s.students[id]
			if !ok || !inScope(st.OwnerID, st.ClassID) {
				continue
			}
			if groupID == nil {
				st.GroupID = nil
				continue
			}
			gid := *groupID
			st.GroupID = &gid
		}
	}
	for _, m := range plan.Memberships {
		gid := m.GroupID
		setRef(m.StudentIDs, &gid)
	}
	setRef(plan.Unassigned, nil)

	for _, g := range plan.Groups {
		existing, ok := s.groups[g.ID]
		if !ok || !inScope(existing.OwnerID, existing.ClassID) {
			continue
		}
		existing.LeaderID = nil
		if g.LeaderID != nil {
			id := *g.LeaderID
			existing.LeaderID = &id
		}
	}
	return nil
}

// PutGroup stores a group as is. Used to seed fixtures.
func (s *Store) PutGroup(g models.Group) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&g.ID)
	s.groups[g.ID] = &g
	s.stamp(g.ID)
	return g
}

// --- activation codes ---

// CreateActivationCode inserts an unused code
func (s *Store) CreateActivationCode(_ context.Context, code *models.ActivationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.Code == code.Code {
			return apperrors.NewConflictError("activation code already exists")
		}
	}
	ensureID(&code.ID)
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.IsUsed = false
	code.UsedBy = nil
	cp := *code
	s.codes[code.ID] = &cp
	s.stamp(code.ID)
	return nil
}

// FindUnusedActivationCode looks up a code that can still be redeemed
func (s *Store) FindUnusedActivationCode(_ context.Context, code string) (*models.ActivationCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.codes {
		if c.Code != code {
			continue
		}
		if c.IsUsed {
			return nil, apperrors.ErrCodeAlreadyUsed
		}
		cp := s.withConsumer(c)
		return &cp, nil
	}
	return nil, apperrors.ErrCodeNotFound
}

// GetActivationCodeByConsumer returns the code a teacher registered with
func (s *Store) GetActivationCodeByConsumer(_ context.Context, profileID uuid.UUID) (*models.ActivationCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.codes {
		if c.UsedBy != nil && *c.UsedBy == profileID {
			cp := s.withConsumer(c)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCodeNotFound
}

// ListActivationCodes returns every code, newest first
func (s *Store) ListActivationCodes(_ context.Context) ([]models.ActivationCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivationCode, 0, len(s.codes))
	for _, c := range s.codes {
		out = append(out, s.withConsumer(c))
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] > s.seq[out[j].ID] })
	return out, nil
}

// DeleteActivationCode removes a code
func (s *Store) DeleteActivationCode(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[id]; !ok {
		return apperrors.ErrCodeNotFound
	}
	delete(s.codes, id)
	return nil
}

func (s *Store) withConsumer(c *models.ActivationCode) models.ActivationCode {
	cp := *c
	if c.UsedBy != nil {
		if p, ok := s.profiles[*c.UsedBy]; ok {
			name := p.Username
			cp.UsedByUsername = &name
		}
	}
	return cp
}

// --- admin settings ---

// GetAdminSettings returns the stored admin credentials
func (s *Store) GetAdminSettings(_ context.Context) (*models.AdminSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil {
		return nil, apperrors.ErrAdminNotSet
	}
	cp := *s.admin
	return &cp, nil
}

// UpsertAdminSettings replaces the singleton row
func (s *Store) UpsertAdminSettings(_ context.Context, settings *models.AdminSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings.ID = models.AdminSettingsID
	if settings.UpdatedAt.IsZero() {
		settings.UpdatedAt = time.Now()
	}
	cp := *settings
	s.admin = &cp
	return nil
}

var (
	_ repositories.ProfileRepository        = (*Store)(nil)
	_ repositories.ClassRepository          = (*Store)(nil)
	_ repositories.StudentRepository        = (*Store)(nil)
	_ repositories.GroupRepository          = (*Store)(nil)
	_ repositories.ActivationCodeRepository = (*Store)(nil)
	_ repositories.AdminSettingsRepository  = (*Store)(nil)
)
