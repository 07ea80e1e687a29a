package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	"github.com/yigit/pointsboard/internal/app/repositories/memstore"
	"github.com/yigit/pointsboard/internal/config"
	"github.com/yigit/pointsboard/internal/seed"
)

type apiEnv struct {
	router *gin.Engine
	deps   *Dependencies
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.JWT.Secret = "api-test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "pointsboard-test"
	cfg.Drafts.TTL = "30m"
	cfg.Codes.Prefix = "APPLE"

	repos := memstore.New().Repositories()
	require.NoError(t, seed.CreateDefaultAdmin(context.Background(), repos.AdminSettings, "admin", "admin-pass", zerolog.Nop()))

	deps := BuildDependencies(cfg, repos, zerolog.Nop())
	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	return &apiEnv{router: router, deps: deps}
}

// envelope mirrors dto.APIResponse with the data left raw for the caller to decode
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (e *apiEnv) adminToken(t *testing.T) string {
	t.Helper()
	status, env := e.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", dto.AdminLoginRequest{Username: "admin", Password: "admin-pass"})
	require.Equal(t, http.StatusOK, status)
	return decode[dto.AuthResponse](t, env).Token.AccessToken
}

func (e *apiEnv) registerTeacher(t *testing.T, username string) string {
	t.Helper()
	status, env := e.do(t, http.MethodPost, "/api/v1/admin/codes", e.adminToken(t), dto.GenerateCodeRequest{ValidDays: 30})
	require.Equal(t, http.StatusCreated, status)
	code := decode[dto.ActivationCodeResponse](t, env).Code

	status, env = e.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Code: code, FullName: "Teacher " + username, Username: username, Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	return decode[dto.AuthResponse](t, env).Token.AccessToken
}

func TestRegistrationFlow(t *testing.T) {
	e := newAPIEnv(t)
	admin := e.adminToken(t)

	status, env := e.do(t, http.MethodPost, "/api/v1/admin/codes", admin, dto.GenerateCodeRequest{ValidDays: 30})
	require.Equal(t, http.StatusCreated, status)
	code := decode[dto.ActivationCodeResponse](t, env)
	assert.Regexp(t, `^APPLE-[0-9A-Z]{6}$`, code.Code)

	status, env = e.do(t, http.MethodPost, "/api/v1/auth/register/verify-code", "", dto.VerifyCodeRequest{Code: code.Code})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 30, decode[dto.VerifyCodeResponse](t, env).ValidDays)

	register := dto.RegisterRequest{Code: code.Code, FullName: "Li Wei", Username: "liwei", Password: "secret1"}
	status, env = e.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, status)
	auth := decode[dto.AuthResponse](t, env)
	require.NotNil(t, auth.Profile)
	assert.Equal(t, code.Code, auth.Profile.ActivationCode)
	assert.EqualValues(t, "active", auth.Profile.Status)

	// the code is single use
	register.Username = "someone"
	status, env = e.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeActivationUsed, env.Error.Code)

	status, env = e.do(t, http.MethodGet, "/api/v1/me", auth.Token.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "liwei", decode[dto.ProfileResponse](t, env).Username)

	status, env = e.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "liwei", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	e := newAPIEnv(t)

	status, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Code: "not a code", FullName: "Li Wei", Username: "liwei", Password: "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	status, env = e.do(t, http.MethodPost, "/api/v1/auth/register/verify-code", "", dto.VerifyCodeRequest{Code: "APPLE-ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, dto.ErrorCodeActivationNotFound, env.Error.Code)
}

func TestRouteGuards(t *testing.T) {
	e := newAPIEnv(t)
	teacher := e.registerTeacher(t, "guarded")

	status, env := e.do(t, http.MethodGet, "/api/v1/classes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)

	status, env = e.do(t, http.MethodGet, "/api/v1/classes", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, dto.ErrorCodeInvalidToken, env.Error.Code)

	status, _ = e.do(t, http.MethodGet, "/api/v1/admin/codes", teacher, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodGet, "/api/v1/classes", e.adminToken(t), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodGet, "/api/v1/classes/not-a-uuid", teacher, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestClassroomFlow(t *testing.T) {
	e := newAPIEnv(t)
	teacher := e.registerTeacher(t, "liwei")

	status, env := e.do(t, http.MethodPost, "/api/v1/classes", teacher, dto.ClassRequest{Name: "Grade 3 Class A"})
	require.Equal(t, http.StatusCreated, status)
	class := decode[dto.ClassResponse](t, env)
	classPath := "/api/v1/classes/" + class.ID.String()

	students := make([]dto.StudentResponse, 0, 3)
	for _, name := range []string{"Mia", "Leo", "Ava"} {
		status, env = e.do(t, http.MethodPost, "/api/v1/students", teacher, dto.CreateStudentRequest{Name: name, ClassID: class.ID.String()})
		require.Equal(t, http.StatusCreated, status)
		students = append(students, decode[dto.StudentResponse](t, env))
	}

	status, env = e.do(t, http.MethodPatch, "/api/v1/students/"+students[0].ID.String()+"/points", teacher, dto.AdjustPointsRequest{Delta: 7})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, decode[dto.StudentResponse](t, env).Points)

	status, _ = e.do(t, http.MethodPatch, "/api/v1/students/"+students[1].ID.String()+"/points", teacher, dto.AdjustPointsRequest{Delta: 3})
	require.Equal(t, http.StatusOK, status)

	status, env = e.do(t, http.MethodPatch, "/api/v1/students/"+students[1].ID.String()+"/points", teacher, dto.AdjustPointsRequest{Delta: math.MaxInt32 + 1})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)

	status, env = e.do(t, http.MethodGet, "/api/v1/students?classId="+class.ID.String(), teacher, nil)
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]dto.StudentResponse](t, env)
	require.Len(t, listed, 3)
	assert.Equal(t, "Mia", listed[0].Name)

	// group assignment through a draft
	status, env = e.do(t, http.MethodPost, classPath+"/drafts", teacher, nil)
	require.Equal(t, http.StatusCreated, status)
	draft := decode[dto.DraftResponse](t, env)
	assert.Len(t, draft.Unassigned, 3)
	draftPath := "/api/v1/drafts/" + draft.DraftID.String()

	status, env = e.do(t, http.MethodPost, draftPath+"/groups", teacher, dto.GroupNameRequest{Name: "Red"})
	require.Equal(t, http.StatusCreated, status)
	groupID := decode[dto.CreateGroupResponse](t, env).GroupID

	for _, s := range students[:2] {
		status, env = e.do(t, http.MethodPost, draftPath+"/moves", teacher, dto.MoveStudentRequest{
			StudentID: s.ID.String(), To: groupID.String(),
		})
		require.Equal(t, http.StatusOK, status, env.Error)
	}

	status, env = e.do(t, http.MethodPost, draftPath+"/leader", teacher, dto.SetLeaderRequest{
		GroupID: groupID.String(), StudentID: students[0].ID.String(),
	})
	require.Equal(t, http.StatusOK, status)
	draft = decode[dto.DraftResponse](t, env)
	require.Len(t, draft.Groups, 1)
	require.NotNil(t, draft.Groups[0].LeaderID)
	assert.Equal(t, students[0].ID, *draft.Groups[0].LeaderID)

	// moving a student out of a pool it is not in is rejected
	status, env = e.do(t, http.MethodPost, draftPath+"/moves", teacher, dto.MoveStudentRequest{
		StudentID: students[2].ID.String(), From: groupID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeAssignmentInvalid, env.Error.Code)

	status, env = e.do(t, http.MethodPost, draftPath+"/commit", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	board := decode[dto.LeaderboardResponse](t, env)
	require.Len(t, board.Groups, 1)
	assert.Equal(t, "Red", board.Groups[0].Name)
	assert.Equal(t, 10, board.Groups[0].TotalPoints)
	assert.Equal(t, 2, board.Groups[0].MemberCount)
	assert.Len(t, board.Unassigned, 1)
	assert.Equal(t, 10, board.TotalPoints)

	// the draft is closed once committed
	status, _ = e.do(t, http.MethodGet, draftPath, teacher, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = e.do(t, http.MethodGet, classPath+"/leaderboard", teacher, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, board.Groups, decode[dto.LeaderboardResponse](t, env).Groups)

	// a class with students cannot be deleted
	status, env = e.do(t, http.MethodDelete, classPath, teacher, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, dto.ErrorCodeConflict, env.Error.Code)

	// another teacher sees nothing of it
	other := e.registerTeacher(t, "other")
	status, _ = e.do(t, http.MethodGet, classPath+"/leaderboard", other, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminTeacherManagement(t *testing.T) {
	e := newAPIEnv(t)
	e.registerTeacher(t, "alice")
	e.registerTeacher(t, "bob")
	admin := e.adminToken(t)

	status, env := e.do(t, http.MethodGet, "/api/v1/admin/teachers?search=ali&page=1&size=10", admin, nil)
	require.Equal(t, http.StatusOK, status)

	var page struct {
		Items      []dto.ProfileResponse `json:"items"`
		Pagination dto.PaginationInfo    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].Username)
	assert.Equal(t, 1, page.Pagination.TotalItems)

	alice := page.Items[0]
	require.NotNil(t, alice.ExpireAt)
	status, env = e.do(t, http.MethodPost, "/api/v1/admin/teachers/"+alice.ID.String()+"/renew", admin, dto.RenewRequest{Days: 10})
	require.Equal(t, http.StatusOK, status)
	renewed := decode[dto.ProfileResponse](t, env)
	require.NotNil(t, renewed.ExpireAt)
	// renewal counts from the current expiry while the account is active
	assert.WithinDuration(t, alice.ExpireAt.AddDate(0, 0, 10), *renewed.ExpireAt, 2*time.Hour)

	status, _ = e.do(t, http.MethodPost, "/api/v1/admin/teachers/"+alice.ID.String()+"/renew", admin, dto.RenewRequest{Days: 0})
	assert.Equal(t, http.StatusBadRequest, status)
	status, env = e.do(t, http.MethodPost, "/api/v1/admin/teachers/"+alice.ID.String()+"/renew", admin, dto.RenewRequest{Days: 1 << 40})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorCodeValidationFailed, env.Error.Code)
	status, _ = e.do(t, http.MethodPost, "/api/v1/admin/codes", admin, dto.GenerateCodeRequest{ValidDays: 3651})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = e.do(t, http.MethodGet, "/api/v1/admin/codes", admin, nil)
	require.Equal(t, http.StatusOK, status)
	codes := decode[[]dto.ActivationCodeResponse](t, env)
	require.Len(t, codes, 2)
	for _, c := range codes {
		assert.True(t, c.IsUsed)
	}

	status, _ = e.do(t, http.MethodDelete, "/api/v1/admin/teachers/"+alice.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPut, "/api/v1/admin/settings", admin, dto.AdminSettingsRequest{Username: "root", Password: "new-secret"})
	require.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", dto.AdminLoginRequest{Username: "admin", Password: "admin-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = e.do(t, http.MethodPost, "/api/v1/auth/admin/login", "", dto.AdminLoginRequest{Username: "root", Password: "new-secret"})
	assert.Equal(t, http.StatusOK, status)
}
