package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuperAdminAllowedEverywhere(t *testing.T) {
	for _, resource := range []Resource{ResourceUser, ResourceTask, ResourceAssignment, ResourceCatalog, ResourceCompat, ResourceAnalytics} {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionComplete} {
			require.True(t, Allow(SuperAdmin, resource, action),
				"superadmin must be allowed %s on %s", action, resource)
		}
	}
}

func TestUserManagementIsSuperAdminOnly(t *testing.T) {
	for _, role := range []Role{ProductAdmin, ListingAdmin, Lister} {
		require.False(t, Allow(role, ResourceUser, ActionCreate))
		require.False(t, Allow(role, ResourceUser, ActionRead))
		require.False(t, Allow(role, ResourceUser, ActionDelete))
	}
}

func TestListerPermissions(t *testing.T) {
	require.True(t, Allow(Lister, ResourceTask, ActionRead))
	require.True(t, Allow(Lister, ResourceAssignment, ActionRead))
	require.True(t, Allow(Lister, ResourceAssignment, ActionComplete))

	require.False(t, Allow(Lister, ResourceTask, ActionCreate))
	require.False(t, Allow(Lister, ResourceAssignment, ActionCreate))
	require.False(t, Allow(Lister, ResourceAssignment, ActionDelete))
	require.False(t, Allow(Lister, ResourceAnalytics, ActionRead))
}

func TestAdminSplit(t *testing.T) {
	require.True(t, Allow(ProductAdmin, ResourceTask, ActionCreate))
	require.False(t, Allow(ListingAdmin, ResourceTask, ActionCreate))

	require.True(t, Allow(ListingAdmin, ResourceAssignment, ActionCreate))
	require.False(t, Allow(ProductAdmin, ResourceAssignment, ActionCreate))
}

func TestUnknownRoleAndResource(t *testing.T) {
	require.False(t, Allow(Role("auditor"), ResourceTask, ActionRead))
	require.False(t, Allow(Lister, Resource("webhooks"), ActionRead))
	require.False(t, Allow(Lister, ResourceCatalog, ActionComplete))
}

func TestRoleValidity(t *testing.T) {
	require.True(t, Lister.Valid())
	require.False(t, Role("auditor").Valid())
	require.True(t, ListingAdmin.IsAdmin())
	require.False(t, Lister.IsAdmin())
}
