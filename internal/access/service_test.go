package access

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *memStore
	svc    *Service
	owner  uuid.UUID
	formID uuid.UUID
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	owner := store.addUser("owner@example.com")
	formID := store.addForm(owner)

	f := &fixture{
		store:  store,
		owner:  owner,
		formID: formID,
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(store, NewResolver(store), "https://forms.example.com")
	f.svc.now = func() time.Time { return f.now }
	return f
}

func hours(n int) *int { return &n }

func TestCreateInvite(t *testing.T) {
	f := newFixture(t)

	invite, err := f.svc.CreateInvite(context.Background(), f.formID, f.owner, RoleEditor, hours(1))
	require.NoError(t, err)
	require.Equal(t, f.formID, invite.FormID)
	require.Equal(t, RoleEditor, invite.Role)
	require.True(t, ValidInviteTokenFormat(invite.Token))
	require.Equal(t, "https://forms.example.com/join?token="+invite.Token, invite.Link)
	require.NotNil(t, invite.ExpiresAt)
	require.Equal(t, f.now.Add(time.Hour), *invite.ExpiresAt)

	// Only the hash is persisted.
	require.Len(t, f.store.invites, 1)
	require.Equal(t, HashInviteToken(invite.Token), f.store.invites[0].hash)
}

func TestCreateInvite_NoExpiry(t *testing.T) {
	f := newFixture(t)

	invite, err := f.svc.CreateInvite(context.Background(), f.formID, f.owner, RoleViewer, nil)
	require.NoError(t, err)
	require.Nil(t, invite.ExpiresAt)
}

func TestCreateInvite_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleOwner, nil)
	require.ErrorIs(t, err, ErrInvalidGrantRole)

	_, err = f.svc.CreateInvite(ctx, f.formID, f.owner, RoleEditor, hours(0))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.CreateInvite(ctx, f.formID, f.owner, RoleEditor, hours(MaxInviteHours+1))
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = f.svc.CreateInvite(ctx, uuid.New(), f.owner, RoleEditor, nil)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateInvite_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, role := range []Role{RoleViewer, RoleEditor} {
		user := f.store.addUser(role.String() + "@example.com")
		f.store.setGrant(f.formID, user, role)

		_, err := f.svc.CreateInvite(ctx, f.formID, user, RoleViewer, nil)
		require.ErrorIs(t, err, apperrors.ErrForbidden, role.String())
	}
}

func TestCreateInvite_AuthorizesBeforeValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.store.addUser("viewer@example.com")
	f.store.setGrant(f.formID, viewer, RoleViewer)

	_, err := f.svc.CreateInvite(ctx, f.formID, viewer, RoleEditor, hours(0))
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.CreateInvite(ctx, f.formID, viewer, RoleNone, nil)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.CreateInvite(ctx, uuid.New(), f.owner, RoleEditor, hours(0))
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.CreateInvite(ctx, uuid.New(), f.owner, RoleOwner, nil)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.CreateInvite(ctx, f.formID, uuid.Nil, RoleNone, hours(0))
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateInvite_RetriesOnCollision(t *testing.T) {
	f := newFixture(t)
	f.store.collisionsLeft = 2

	_, err := f.svc.CreateInvite(context.Background(), f.formID, f.owner, RoleViewer, nil)
	require.NoError(t, err)

	f.store.collisionsLeft = inviteCreateAttempts
	_, err = f.svc.CreateInvite(context.Background(), f.formID, f.owner, RoleViewer, nil)
	require.ErrorContains(t, err, "retry exhausted")
}

func TestAcceptInvite_GrantsRoleOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.store.addUser("new@example.com")

	invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleEditor, hours(1))
	require.NoError(t, err)

	result, err := f.svc.AcceptInvite(ctx, invite.Token, user)
	require.NoError(t, err)
	require.Equal(t, f.formID, result.FormID)
	require.Equal(t, RoleEditor, result.Role)
	require.False(t, result.AlreadyHadAccess)

	role, err := f.svc.resolver.ResolveRole(ctx, f.formID, user)
	require.NoError(t, err)
	require.Equal(t, RoleEditor, role)

	require.NotNil(t, f.store.invites[0].UsedAt)
	require.Equal(t, user, *f.store.invites[0].UsedByUserID)

	_, err = f.svc.AcceptInvite(ctx, invite.Token, user)
	require.ErrorIs(t, err, ErrInviteNotFound)

	other := f.store.addUser("other@example.com")
	_, err = f.svc.AcceptInvite(ctx, invite.Token, other)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAcceptInvite_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.store.addUser("late@example.com")

	invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleViewer, hours(1))
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	_, err = f.svc.AcceptInvite(ctx, invite.Token, user)
	require.ErrorIs(t, err, ErrInviteNotFound)
	require.Nil(t, f.store.invites[0].UsedAt)
}

func TestAcceptInvite_MalformedToken(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "nope", "fki_short", strings.Repeat("a", 47)} {
		_, err := f.svc.AcceptInvite(context.Background(), token, f.owner)
		require.ErrorIs(t, err, ErrInviteNotFound)
	}
}

func TestAcceptInvite_OwnerConsumesWithoutGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleViewer, nil)
	require.NoError(t, err)

	result, err := f.svc.AcceptInvite(ctx, invite.Token, f.owner)
	require.NoError(t, err)
	require.True(t, result.AlreadyHadAccess)
	require.Equal(t, RoleOwner, result.Role)
	require.Empty(t, f.store.grants)
	require.NotNil(t, f.store.invites[0].UsedAt)
}

func TestAcceptInvite_ExistingGrants(t *testing.T) {
	ctx := context.Background()

	t.Run("higher grant is kept", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.addUser("editor@example.com")
		f.store.setGrant(f.formID, user, RoleEditor)

		invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleViewer, nil)
		require.NoError(t, err)

		result, err := f.svc.AcceptInvite(ctx, invite.Token, user)
		require.NoError(t, err)
		require.True(t, result.AlreadyHadAccess)
		require.Equal(t, RoleEditor, result.Role)
		require.Equal(t, RoleEditor, f.store.grants[grantKey{f.formID, user}].Role)
	})

	t.Run("equal grant is kept", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.addUser("viewer@example.com")
		f.store.setGrant(f.formID, user, RoleViewer)

		invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleViewer, nil)
		require.NoError(t, err)

		result, err := f.svc.AcceptInvite(ctx, invite.Token, user)
		require.NoError(t, err)
		require.True(t, result.AlreadyHadAccess)
	})

	t.Run("lower grant is upgraded", func(t *testing.T) {
		f := newFixture(t)
		user := f.store.addUser("viewer@example.com")
		f.store.setGrant(f.formID, user, RoleViewer)

		invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleEditor, nil)
		require.NoError(t, err)

		result, err := f.svc.AcceptInvite(ctx, invite.Token, user)
		require.NoError(t, err)
		require.False(t, result.AlreadyHadAccess)
		require.Equal(t, RoleEditor, result.Role)
		require.Equal(t, RoleEditor, f.store.grants[grantKey{f.formID, user}].Role)
	})
}

func TestAcceptInvite_ConcurrentRedemption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.CreateInvite(ctx, f.formID, f.owner, RoleEditor, nil)
	require.NoError(t, err)

	const redeemers = 16
	users := make([]uuid.UUID, redeemers)
	for i := range users {
		users[i] = f.store.addUser(uuid.NewString() + "@example.com")
	}

	var wg sync.WaitGroup
	errs := make([]error, redeemers)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AcceptInvite(ctx, invite.Token, users[i])
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrInviteNotFound)
	}
	require.Equal(t, 1, successes)
	require.Len(t, f.store.grants, 1)
}

func TestAddAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.store.addUser("user@example.com")

	grant, err := f.svc.AddAccess(ctx, f.formID, f.owner, user, RoleViewer)
	require.NoError(t, err)
	require.Equal(t, RoleViewer, grant.Role)

	grant, err = f.svc.AddAccess(ctx, f.formID, f.owner, user, RoleEditor)
	require.NoError(t, err)
	require.Equal(t, RoleEditor, grant.Role)
	require.Len(t, f.store.grants, 1)

	_, err = f.svc.AddAccess(ctx, f.formID, f.owner, f.owner, RoleEditor)
	require.ErrorIs(t, err, ErrOwnerGrant)

	_, err = f.svc.AddAccess(ctx, f.formID, f.owner, uuid.New(), RoleEditor)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.AddAccess(ctx, f.formID, user, f.store.addUser("x@example.com"), RoleViewer)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAddAccess_AuthorizesBeforeValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.store.addUser("editor@example.com")
	f.store.setGrant(f.formID, editor, RoleEditor)

	_, err := f.svc.AddAccess(ctx, uuid.New(), f.owner, editor, RoleOwner)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.AddAccess(ctx, uuid.New(), f.owner, uuid.Nil, RoleNone)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.AddAccess(ctx, f.formID, editor, uuid.Nil, RoleOwner)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.AddAccess(ctx, f.formID, f.owner, uuid.Nil, RoleViewer)
	require.ErrorIs(t, err, ErrUserIDRequired)

	_, err = f.svc.AddAccess(ctx, f.formID, f.owner, editor, RoleNone)
	require.ErrorIs(t, err, ErrInvalidGrantRole)
}

func TestRemoveAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.store.addUser("viewer@example.com")
	f.store.setGrant(f.formID, viewer, RoleViewer)

	err := f.svc.RemoveAccess(ctx, f.formID, viewer, viewer)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.RemoveAccess(ctx, f.formID, f.owner, viewer))
	require.Empty(t, f.store.grants)

	err = f.svc.RemoveAccess(ctx, f.formID, f.owner, viewer)
	require.ErrorIs(t, err, ErrGrantNotFound)
}

func TestListAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.store.addUser("editor@example.com")
	f.store.setGrant(f.formID, editor, RoleEditor)

	grants, err := f.svc.ListAccess(ctx, f.formID, f.owner)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, "editor@example.com", grants[0].Email)

	_, err = f.svc.ListAccess(ctx, f.formID, editor)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
