package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aliuyar1234/formkit/internal/access"
	"github.com/aliuyar1234/formkit/internal/app"
	"github.com/aliuyar1234/formkit/internal/apperrors"
	"github.com/aliuyar1234/formkit/internal/forms"
	"github.com/aliuyar1234/formkit/internal/retention"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIntegration_ConcurrentInviteRedemption(t *testing.T) {
	pool := newTestDB(t)

	ctx := context.Background()
	svc := app.NewServices(pool, testConfig())

	owner, err := svc.Auth.Register(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	form, err := svc.Forms.Create(ctx, owner.User.ID, forms.CreateInput{Title: "Shared"})
	require.NoError(t, err)

	invite, err := svc.Access.CreateInvite(ctx, form.ID, owner.User.ID, access.RoleEditor, nil)
	require.NoError(t, err)

	const redeemers = 8
	users := make([]uuid.UUID, redeemers)
	for i := range users {
		session, err := svc.Auth.Register(ctx, fmt.Sprintf("user%d@example.com", i), "password123")
		require.NoError(t, err)
		users[i] = session.User.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, redeemers)
	for i, userID := range users {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Access.AcceptInvite(ctx, invite.Token, userID)
		}(i, userID)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	}
	require.Equal(t, 1, successes)

	var grants int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM form_access WHERE form_id = $1`, form.ID).Scan(&grants))
	require.Equal(t, 1, grants)
}

func TestIntegration_OwnerKeepsOwnerRoleDespiteGrantRow(t *testing.T) {
	pool := newTestDB(t)

	ctx := context.Background()
	svc := app.NewServices(pool, testConfig())

	owner, err := svc.Auth.Register(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	form, err := svc.Forms.Create(ctx, owner.User.ID, forms.CreateInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO form_access (form_id, user_id, role) VALUES ($1, $2, 'viewer')`, form.ID, owner.User.ID)
	require.NoError(t, err)

	role, err := access.NewResolver(access.NewPostgresStore(pool)).ResolveRole(ctx, form.ID, owner.User.ID)
	require.NoError(t, err)
	require.Equal(t, access.RoleOwner, role)
}

func TestIntegration_PurgeStaleInvites(t *testing.T) {
	pool := newTestDB(t)

	ctx := context.Background()
	svc := app.NewServices(pool, testConfig())

	owner, err := svc.Auth.Register(ctx, "owner@example.com", "password123")
	require.NoError(t, err)
	form, err := svc.Forms.Create(ctx, owner.User.ID, forms.CreateInput{Title: "Old invites"})
	require.NoError(t, err)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		invite, err := svc.Access.CreateInvite(ctx, form.ID, owner.User.ID, access.RoleViewer, nil)
		require.NoError(t, err)
		ids = append(ids, invite.ID)
	}

	// used long ago, expired long ago, still active
	_, err = pool.Exec(ctx, `UPDATE form_invites SET used_at = NOW() - INTERVAL '40 days' WHERE id = $1`, ids[0])
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE form_invites SET expires_at = NOW() - INTERVAL '40 days' WHERE id = $1`, ids[1])
	require.NoError(t, err)

	deleted, err := retention.PurgeStaleInvites(ctx, pool, 30)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	var remaining uuid.UUID
	require.NoError(t, pool.QueryRow(ctx, `SELECT id FROM form_invites WHERE form_id = $1`, form.ID).Scan(&remaining))
	require.Equal(t, ids[2], remaining)
}
