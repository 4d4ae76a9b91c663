package members

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest-backend/pkg/db/models"
	apperrors "github.com/tripnest/tripnest-backend/pkg/errors"
)

func newGate(f *fixture) *Gate {
	return NewGate(f.client, f.repo, f.resolver)
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)
	gate := newGate(f)
	group := f.createGroup(t, "iceland-2025", "")
	admin := f.createUser(t, "admin@example.com")
	plain := f.createUser(t, "plain@example.com")
	adminMember := f.createMember(t, group.ID, "Admin", &admin.ID, nil, true)
	f.createMember(t, group.ID, "Plain", &plain.ID, nil, false)

	_, err := gate.RequireAdmin(context.Background(), anonymousRequest(), group.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "no session")

	_, err = gate.RequireAdmin(context.Background(), f.loggedInRequest(t, plain.ID), group.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "member without the admin flag")

	got, err := gate.RequireAdmin(context.Background(), f.loggedInRequest(t, admin.ID), group.ID)
	require.NoError(t, err)
	assert.Equal(t, adminMember.ID, got.ID)
}

func TestToggleAdmin(t *testing.T) {
	f := newFixture(t)
	gate := newGate(f)
	group := f.createGroup(t, "iceland-2025", "")
	admin := f.createUser(t, "admin@example.com")
	other := f.createUser(t, "other@example.com")
	adminMember := f.createMember(t, group.ID, "Admin", &admin.ID, nil, true)
	linked := f.createMember(t, group.ID, "Linked", &other.ID, nil, false)
	guest := f.createMember(t, group.ID, "Guest", nil, nil, false)

	r := f.loggedInRequest(t, admin.ID)

	_, err := gate.ToggleAdmin(context.Background(), r, group.ID, adminMember.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStateConflict), "own role is off limits")

	_, err = gate.ToggleAdmin(context.Background(), r, group.ID, guest.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStateConflict), "guests cannot hold admin rights")

	updated, err := gate.ToggleAdmin(context.Background(), r, group.ID, linked.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	updated, err = gate.ToggleAdmin(context.Background(), r, group.ID, linked.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin, "toggling twice restores the original flag")
}

func TestToggleAdmin_TargetInAnotherGroup(t *testing.T) {
	f := newFixture(t)
	gate := newGate(f)
	groupA := f.createGroup(t, "iceland-2025", "")
	groupB := f.createGroup(t, "norway-2026", "")
	admin := f.createUser(t, "admin@example.com")
	other := f.createUser(t, "other@example.com")
	f.createMember(t, groupA.ID, "Admin", &admin.ID, nil, true)
	foreign := f.createMember(t, groupB.ID, "Foreign", &other.ID, nil, false)

	_, err := gate.ToggleAdmin(context.Background(), f.loggedInRequest(t, admin.ID), groupA.ID, foreign.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "admin rights do not cross groups")
}

func TestDeleteMember(t *testing.T) {
	f := newFixture(t)
	gate := newGate(f)
	group := f.createGroup(t, "iceland-2025", "")
	admin := f.createUser(t, "admin@example.com")
	plain := f.createUser(t, "plain@example.com")
	adminMember := f.createMember(t, group.ID, "Admin", &admin.ID, nil, true)
	f.createMember(t, group.ID, "Plain", &plain.ID, nil, false)
	guest := f.createMember(t, group.ID, "Guest", nil, nil, false)
	f.guestRequest(t, group.ID, &guest.ID) // leaves a session row behind

	err := gate.DeleteMember(context.Background(), f.loggedInRequest(t, plain.ID), group.ID, guest.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "non-admin cannot delete")
	assert.EqualValues(t, 3, f.memberCount(t, group.ID))

	r := f.loggedInRequest(t, admin.ID)
	err = gate.DeleteMember(context.Background(), r, group.ID, adminMember.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStateConflict), "admins never delete themselves")

	require.NoError(t, gate.DeleteMember(context.Background(), r, group.ID, guest.ID))
	assert.EqualValues(t, 2, f.memberCount(t, group.ID))

	var sessionCount int64
	require.NoError(t, f.conn.Model(&models.MemberSession{}).Where("member_id = ?", guest.ID).Count(&sessionCount).Error)
	assert.EqualValues(t, 0, sessionCount, "guest sessions cascade with the membership")
}

func TestRevokeMemberSessions_KeepsMembership(t *testing.T) {
	f := newFixture(t)
	gate := newGate(f)
	group := f.createGroup(t, "iceland-2025", "")
	admin := f.createUser(t, "admin@example.com")
	f.createMember(t, group.ID, "Admin", &admin.ID, nil, true)
	guest := f.createMember(t, group.ID, "Guest", nil, nil, false)
	guestReq := f.guestRequest(t, group.ID, &guest.ID)

	require.NoError(t, gate.RevokeMemberSessions(context.Background(), f.loggedInRequest(t, admin.ID), group.ID, guest.ID))

	actor, err := f.resolver.Resolve(context.Background(), guestReq, group.ID)
	require.NoError(t, err)
	assert.False(t, actor.IsMember(), "the browser must re-join")
	assert.EqualValues(t, 2, f.memberCount(t, group.ID), "the membership row survives")
}
