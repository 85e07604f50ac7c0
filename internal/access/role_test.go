package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	require.True(t, RoleOwner.AtLeast(RoleEditor))
	require.True(t, RoleEditor.AtLeast(RoleViewer))
	require.True(t, RoleViewer.AtLeast(RoleViewer))
	require.False(t, RoleViewer.AtLeast(RoleEditor))
	require.False(t, RoleNone.AtLeast(RoleViewer))
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role         Role
		edit, manage bool
		view         bool
	}{
		{RoleOwner, true, true, true},
		{RoleEditor, true, false, true},
		{RoleViewer, false, false, true},
		{RoleNone, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			require.Equal(t, tt.edit, CanEdit(tt.role))
			require.Equal(t, tt.manage, CanManageAccess(tt.role))
			require.Equal(t, tt.view, CanViewResponses(tt.role))
		})
	}
}

func TestRequestedRole(t *testing.T) {
	require.Equal(t, RoleEditor, requestedRole("editor"))
	require.Equal(t, RoleViewer, requestedRole("viewer"))
	require.Equal(t, RoleOwner, requestedRole("owner"))

	for _, bad := range []string{"admin", "", "Editor"} {
		require.Equal(t, RoleNone, requestedRole(bad), bad)
	}
}

func TestRoleMarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Role{"a": RoleEditor, "b": RoleNone})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"editor","b":null}`, string(out))
}
