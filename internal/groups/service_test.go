package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/internal/members"
	"github.com/tripnest/tripnest-backend/internal/sessions"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"
)

type fixture struct {
	conn     *gorm.DB
	sessions *sessions.Manager
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, config.FeatureFlagsConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))

	mgr := sessions.NewManager(client.DB(), config.SessionConfig{})
	memberRepo := members.NewRepository(client.DB())
	resolver := members.NewResolver(mgr, memberRepo)
	gate := members.NewGate(client, memberRepo, resolver)
	svc := NewService(client, NewRepository(client.DB()), memberRepo, mgr, resolver, gate, config.PasswordConfig{})
	return &fixture{conn: client.DB(), sessions: mgr, svc: svc}
}

func (f *fixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: "x"}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func (f *fixture) loggedInRequest(t *testing.T, userID uuid.UUID) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := f.sessions.IssueUserSession(context.Background(), rec, userID)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestCreate_RequiresLogin(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Create(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestCreate_GroupWithBootstrapAdmin(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "u1@example.com")

	group, admin, err := f.svc.Create(context.Background(), f.loggedInRequest(t, user.ID), CreateGroupRequest{
		Slug: "Iceland-2025",
		Name: "Iceland",
	})
	require.NoError(t, err)
	assert.Equal(t, "iceland-2025", group.Slug, "slug is lowercased")
	assert.False(t, group.HasPassword)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin, "creator is the bootstrap admin")
	assert.True(t, admin.Linked)
	assert.Equal(t, group.ID, admin.GroupID)

	var count int64
	require.NoError(t, f.conn.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "u1@example.com")
	r := f.loggedInRequest(t, user.ID)

	_, _, err := f.svc.Create(context.Background(), r, CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)

	_, _, err = f.svc.Create(context.Background(), r, CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland Again"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestCreate_InvalidSlug(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "u1@example.com")

	_, _, err := f.svc.Create(context.Background(), f.loggedInRequest(t, user.ID), CreateGroupRequest{Slug: "not a slug!", Name: "Iceland"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestCreate_WithPassword(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "u1@example.com")

	group, _, err := f.svc.Create(context.Background(), f.loggedInRequest(t, user.ID), CreateGroupRequest{
		Slug:     "iceland-2025",
		Name:     "Iceland",
		Password: "glacier",
	})
	require.NoError(t, err)
	assert.True(t, group.HasPassword)
}

func TestGet_UnknownSlug(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateSettings_AdminOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	group, _, err := f.svc.Create(context.Background(), f.loggedInRequest(t, owner.ID), CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)

	name := "Renamed"
	_, err = f.svc.UpdateSettings(context.Background(), f.loggedInRequest(t, outsider.ID), group.ID, UpdateGroupRequest{Name: &name})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := f.svc.UpdateSettings(context.Background(), f.loggedInRequest(t, owner.ID), group.ID, UpdateGroupRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateSettings_PasswordOnOff(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	r := f.loggedInRequest(t, owner.ID)
	group, _, err := f.svc.Create(context.Background(), r, CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)

	pw := "glacier"
	updated, err := f.svc.UpdateSettings(context.Background(), r, group.ID, UpdateGroupRequest{Password: &pw})
	require.NoError(t, err)
	assert.True(t, updated.HasPassword)

	updated, err = f.svc.UpdateSettings(context.Background(), r, group.ID, UpdateGroupRequest{RemovePassword: true})
	require.NoError(t, err)
	assert.False(t, updated.HasPassword)
}

func TestRoster_MembersOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	outsider := f.createUser(t, "outsider@example.com")
	group, _, err := f.svc.Create(context.Background(), f.loggedInRequest(t, owner.ID), CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)

	// No session at all.
	_, err = f.svc.Roster(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), group.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	// Logged in, but not a member of this group.
	_, err = f.svc.Roster(context.Background(), f.loggedInRequest(t, outsider.ID), group.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	roster, err := f.svc.Roster(context.Background(), f.loggedInRequest(t, owner.ID), group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "owner", roster[0].DisplayName)
	assert.True(t, roster[0].IsAdmin)
}

func TestRoster_OmitsEmails(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	group, _, err := f.svc.Create(context.Background(), f.loggedInRequest(t, owner.ID), CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)

	roster, err := f.svc.Roster(context.Background(), f.loggedInRequest(t, owner.ID), group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	payload, err := json.Marshal(roster)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "owner@example.com")
	assert.NotContains(t, string(payload), "email")
}

func TestUpdateSettings_ReslugConflict(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com")
	r := f.loggedInRequest(t, owner.ID)
	_, _, err := f.svc.Create(context.Background(), r, CreateGroupRequest{Slug: "iceland-2025", Name: "Iceland"})
	require.NoError(t, err)
	groupB, _, err := f.svc.Create(context.Background(), r, CreateGroupRequest{Slug: "norway-2026", Name: "Norway"})
	require.NoError(t, err)

	clash := "iceland-2025"
	_, err = f.svc.UpdateSettings(context.Background(), r, groupB.ID, UpdateGroupRequest{Slug: &clash})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
