package members

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripnest/tripnest-backend/internal/sessions"
	"github.com/tripnest/tripnest-backend/pkg/config"
	"github.com/tripnest/tripnest-backend/pkg/db"
	"github.com/tripnest/tripnest-backend/pkg/db/models"
	"github.com/tripnest/tripnest-backend/pkg/security"
)

type fixture struct {
	client   *db.Client
	conn     *gorm.DB
	sessions *sessions.Manager
	repo     *Repository
	resolver *Resolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, config.FeatureFlagsConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))

	mgr := sessions.NewManager(client.DB(), config.SessionConfig{})
	repo := NewRepository(client.DB())
	return &fixture{
		client:   client,
		conn:     client.DB(),
		sessions: mgr,
		repo:     repo,
		resolver: NewResolver(mgr, repo),
	}
}

func (f *fixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{ID: uuid.New(), Email: email, PasswordHash: "x"}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func (f *fixture) createGroup(t *testing.T, slug, password string) *models.Group {
	t.Helper()

	group := &models.Group{ID: uuid.New(), Slug: slug, Name: slug}
	if password != "" {
		hash, err := security.HashPassword(password, config.PasswordConfig{})
		require.NoError(t, err)
		group.PasswordHash = &hash
	}
	require.NoError(t, f.conn.Create(group).Error)
	return group
}

func (f *fixture) createMember(t *testing.T, groupID uuid.UUID, displayName string, userID *uuid.UUID, email *string, isAdmin bool) *models.GroupMember {
	t.Helper()

	member := &models.GroupMember{
		ID:          uuid.New(),
		GroupID:     groupID,
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		IsAdmin:     isAdmin,
	}
	require.NoError(t, f.conn.Create(member).Error)
	return member
}

// loggedInRequest returns a request carrying a fresh account session cookie.
func (f *fixture) loggedInRequest(t *testing.T, userID uuid.UUID) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := f.sessions.IssueUserSession(context.Background(), rec, userID)
	require.NoError(t, err)
	return requestWith(rec)
}

// guestRequest returns a request carrying a guest session cookie for the
// group, bound to memberID when non-nil.
func (f *fixture) guestRequest(t *testing.T, groupID uuid.UUID, memberID *uuid.UUID) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	_, err := f.sessions.IssueMemberSession(context.Background(), rec, groupID, memberID)
	require.NoError(t, err)
	return requestWith(rec)
}

func (f *fixture) memberCount(t *testing.T, groupID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.conn.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error)
	return count
}

func requestWith(recs ...*httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, rec := range recs {
		for _, c := range (&http.Response{Header: rec.Header()}).Cookies() {
			r.AddCookie(c)
		}
	}
	return r
}

func strPtr(s string) *string {
	return &s
}
