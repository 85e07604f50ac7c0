package access

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type grantKey struct {
	formID uuid.UUID
	userID uuid.UUID
}

type storedInvite struct {
	Invite
	hash []byte
}

// memStore is an in-memory Store. InTx holds the mutex for the whole unit of
// work, which serializes redemptions the way the invite row lock does.
type memStore struct {
	mu             sync.Mutex
	owners         map[uuid.UUID]uuid.UUID
	users          map[uuid.UUID]string
	grants         map[grantKey]Grant
	invites        []*storedInvite
	collisionsLeft int
}

func newMemStore() *memStore {
	return &memStore{
		owners: make(map[uuid.UUID]uuid.UUID),
		users:  make(map[uuid.UUID]string),
		grants: make(map[grantKey]Grant),
	}
}

func (m *memStore) addUser(email string) uuid.UUID {
	id := uuid.New()
	m.users[id] = email
	return id
}

func (m *memStore) addForm(ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.owners[id] = ownerID
	return id
}

func (m *memStore) setGrant(formID, userID uuid.UUID, role Role) {
	m.grants[grantKey{formID, userID}] = Grant{ID: uuid.New(), FormID: formID, UserID: userID, Role: role, CreatedAt: time.Now()}
}

func (m *memStore) GetFormOwner(_ context.Context, formID uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.formOwner(formID)
}

func (m *memStore) formOwner(formID uuid.UUID) (uuid.UUID, error) {
	owner, ok := m.owners[formID]
	if !ok {
		return uuid.Nil, ErrFormNotFound
	}
	return owner, nil
}

func (m *memStore) GetGrantRole(_ context.Context, formID, userID uuid.UUID) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grants[grantKey{formID, userID}].Role, nil
}

func (m *memStore) UpsertGrant(_ context.Context, formID, userID uuid.UUID, role Role) (*Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, ErrUserNotFound
	}
	key := grantKey{formID, userID}
	grant, ok := m.grants[key]
	if !ok {
		grant = Grant{ID: uuid.New(), FormID: formID, UserID: userID, CreatedAt: time.Now()}
	}
	grant.Role = role
	m.grants[key] = grant
	return &grant, nil
}

func (m *memStore) DeleteGrant(_ context.Context, formID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := grantKey{formID, userID}
	if _, ok := m.grants[key]; !ok {
		return false, nil
	}
	delete(m.grants, key)
	return true, nil
}

func (m *memStore) ListGrants(_ context.Context, formID uuid.UUID) ([]GrantWithEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []GrantWithEmail
	for key, grant := range m.grants {
		if key.formID == formID {
			out = append(out, GrantWithEmail{Grant: grant, Email: m.users[key.userID]})
		}
	}
	return out, nil
}

func (m *memStore) CreateInvite(_ context.Context, in NewInvite) (*Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collisionsLeft > 0 {
		m.collisionsLeft--
		return nil, ErrTokenCollision
	}
	createdBy := in.CreatedByUserID
	inv := &storedInvite{
		Invite: Invite{
			ID:              uuid.New(),
			FormID:          in.FormID,
			Role:            in.Role,
			CreatedByUserID: &createdBy,
			CreatedAt:       time.Now(),
			ExpiresAt:       in.ExpiresAt,
		},
		hash: in.TokenHash,
	}
	m.invites = append(m.invites, inv)
	copied := inv.Invite
	return &copied, nil
}

func (m *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	grants := make(map[grantKey]Grant, len(m.grants))
	for k, v := range m.grants {
		grants[k] = v
	}
	invites := make([]storedInvite, len(m.invites))
	for i, inv := range m.invites {
		invites[i] = *inv
	}

	if err := fn(memTx{m}); err != nil {
		m.grants = grants
		for i := range invites {
			*m.invites[i] = invites[i]
		}
		return err
	}
	return nil
}

type memTx struct {
	m *memStore
}

func (t memTx) LockActiveInvite(_ context.Context, tokenHash []byte, now time.Time) (*Invite, error) {
	for _, inv := range t.m.invites {
		if !bytes.Equal(inv.hash, tokenHash) || inv.UsedAt != nil {
			continue
		}
		if inv.ExpiresAt != nil && !inv.ExpiresAt.After(now) {
			continue
		}
		copied := inv.Invite
		return &copied, nil
	}
	return nil, ErrInviteNotFound
}

func (t memTx) GetFormOwner(_ context.Context, formID uuid.UUID) (uuid.UUID, error) {
	return t.m.formOwner(formID)
}

func (t memTx) GetGrantRoleForUpdate(_ context.Context, formID, userID uuid.UUID) (Role, error) {
	return t.m.grants[grantKey{formID, userID}].Role, nil
}

func (t memTx) InsertGrant(_ context.Context, formID, userID uuid.UUID, role Role) error {
	key := grantKey{formID, userID}
	if _, ok := t.m.grants[key]; ok {
		return nil
	}
	t.m.grants[key] = Grant{ID: uuid.New(), FormID: formID, UserID: userID, Role: role, CreatedAt: time.Now()}
	return nil
}

func (t memTx) UpdateGrantRole(_ context.Context, formID, userID uuid.UUID, role Role) error {
	key := grantKey{formID, userID}
	grant := t.m.grants[key]
	grant.Role = role
	t.m.grants[key] = grant
	return nil
}

func (t memTx) MarkInviteUsed(_ context.Context, inviteID, userID uuid.UUID, now time.Time) error {
	for _, inv := range t.m.invites {
		if inv.ID == inviteID && inv.UsedAt == nil {
			usedAt := now
			usedBy := userID
			inv.UsedAt = &usedAt
			inv.UsedByUserID = &usedBy
			return nil
		}
	}
	return ErrInviteNotFound
}
