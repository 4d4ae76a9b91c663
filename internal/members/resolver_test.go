package members

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoSessions(t *testing.T) {
	f := newFixture(t)
	group := f.createGroup(t, "iceland-2025", "")

	actor, err := f.resolver.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), group.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorAnonymous, actor.Kind)
	assert.False(t, actor.IsMember())
}

func TestResolve_AccountSessionWinsOverGuestCookie(t *testing.T) {
	f := newFixture(t)
	group := f.createGroup(t, "iceland-2025", "")
	user := f.createUser(t, "u1@example.com")
	linked := f.createMember(t, group.ID, "U1", &user.ID, nil, true)
	guest := f.createMember(t, group.ID, "Alex", nil, nil, false)

	// Both cookies at once: a stale guest cookie from before registration
	// plus a live account session.
	userRec := httptest.NewRecorder()
	_, err := f.sessions.IssueUserSession(context.Background(), userRec, user.ID)
	require.NoError(t, err)
	guestRec := httptest.NewRecorder()
	_, err = f.sessions.IssueMemberSession(context.Background(), guestRec, group.ID, &guest.ID)
	require.NoError(t, err)

	actor, err := f.resolver.Resolve(context.Background(), requestWith(userRec, guestRec), group.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorAuthenticated, actor.Kind)
	require.True(t, actor.IsMember())
	assert.Equal(t, linked.ID, actor.Member.ID, "authenticated identity is never shadowed by a guest cookie")
	assert.True(t, actor.IsAdmin())
}

func TestResolve_GuestCookieResolvesOwnGroupOnly(t *testing.T) {
	f := newFixture(t)
	groupA := f.createGroup(t, "iceland-2025", "")
	groupB := f.createGroup(t, "norway-2026", "")
	guest := f.createMember(t, groupA.ID, "Alex", nil, nil, false)
	r := f.guestRequest(t, groupA.ID, &guest.ID)

	actor, err := f.resolver.Resolve(context.Background(), r, groupA.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorGuest, actor.Kind)
	require.True(t, actor.IsMember())
	assert.Equal(t, guest.ID, actor.Member.ID)

	actor, err = f.resolver.Resolve(context.Background(), r, groupB.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorAnonymous, actor.Kind)
	assert.False(t, actor.IsMember(), "a guest token for group A must not resolve in group B")
}

func TestResolve_MemberlessGuestSession(t *testing.T) {
	f := newFixture(t)
	group := f.createGroup(t, "iceland-2025", "pw")
	r := f.guestRequest(t, group.ID, nil)

	actor, err := f.resolver.Resolve(context.Background(), r, group.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorAnonymous, actor.Kind)
	assert.False(t, actor.IsMember(), "past the password gate but nameless is not yet a member")
}

func TestResolve_AuthenticatedWithoutMembershipFallsBackToGuest(t *testing.T) {
	f := newFixture(t)
	group := f.createGroup(t, "iceland-2025", "")
	user := f.createUser(t, "u1@example.com")
	guest := f.createMember(t, group.ID, "Alex", nil, nil, false)

	userRec := httptest.NewRecorder()
	_, err := f.sessions.IssueUserSession(context.Background(), userRec, user.ID)
	require.NoError(t, err)
	guestRec := httptest.NewRecorder()
	_, err = f.sessions.IssueMemberSession(context.Background(), guestRec, group.ID, &guest.ID)
	require.NoError(t, err)

	actor, err := f.resolver.Resolve(context.Background(), requestWith(userRec, guestRec), group.ID)
	require.NoError(t, err)
	assert.Equal(t, ActorGuest, actor.Kind)
	require.True(t, actor.IsMember())
	assert.Equal(t, guest.ID, actor.Member.ID)
	require.NotNil(t, actor.User, "the platform user is still known to the actor")
	assert.Equal(t, user.ID, actor.User.ID)
}
