package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanUpdateRole(t *testing.T) {
	cases := []struct {
		actor, target Role
		want          bool
	}{
		{RoleOwner, RoleOwner, true},
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleViewer, true},
		{RoleAdmin, RoleOwner, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleContributor, true},
		{RoleAdmin, RoleStudent, true},
		{RoleAdmin, RoleViewer, true},
		{RoleContributor, RoleViewer, false},
		{RoleStudent, RoleStudent, false},
		{RoleViewer, RoleViewer, false},
		{Role("ghost"), RoleViewer, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s->%s", tc.actor, tc.target), func(t *testing.T) {
			assert.Equal(t, tc.want, CanUpdateRole(tc.actor, tc.target))
		})
	}
}

func TestCanDeleteUserNeverSelf(t *testing.T) {
	for _, r := range Roles() {
		assert.False(t, CanDeleteUser(r, r, true), r)
	}
}

func TestCanDeleteUser(t *testing.T) {
	cases := []struct {
		actor, target Role
		want          bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleOwner, true},
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleContributor, true},
		{RoleAdmin, RoleStudent, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleOwner, false},
		{RoleContributor, RoleViewer, false},
		{RoleViewer, RoleViewer, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanDeleteUser(tc.actor, tc.target, false), "%s deletes %s", tc.actor, tc.target)
	}
}

func TestCanManageUsers(t *testing.T) {
	for _, admin := range []Role{RoleOwner, RoleAdmin} {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionList, ActionStats} {
			assert.True(t, CanManageUsers(admin, action, "a", "b"), "%s %s", admin, action)
		}
	}

	for _, r := range []Role{RoleContributor, RoleStudent, RoleViewer} {
		assert.False(t, CanManageUsers(r, ActionCreate, "u1", "u1"))
		assert.False(t, CanManageUsers(r, ActionList, "u1", "u1"))
		assert.False(t, CanManageUsers(r, ActionStats, "u1", "u1"))

		for _, action := range []Action{ActionRead, ActionUpdate, ActionDelete} {
			assert.True(t, CanManageUsers(r, action, "u1", "u1"), "%s %s own", r, action)
			assert.False(t, CanManageUsers(r, action, "u1", "u2"), "%s %s other", r, action)
		}

		assert.False(t, CanManageUsers(r, Action("export"), "u1", "u1"))
	}

	assert.False(t, CanManageUsers(RoleViewer, ActionRead, "", ""))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.True(t, RoleOwner.IsAdmin())
	assert.False(t, RoleContributor.IsAdmin())
	assert.True(t, RoleContributor.In(RoleAdmin, RoleContributor))
}
