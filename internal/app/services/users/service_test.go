package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "autorent/internal/domain/auth"
	domainuser "autorent/internal/domain/user"
	"autorent/internal/infra/security"
	"autorent/internal/infra/storage/memory"
)

func newFixture(t *testing.T) (*Service, *memory.SessionStore) {
	t.Helper()
	sessions := memory.NewSessionStore()
	return &Service{
		Users:     memory.NewUserRepository(),
		Passwords: security.PasswordHasher{Cost: 4},
		Sessions:  sessions,
	}, sessions
}

func seedUser(t *testing.T, svc *Service, id, email string) *domainuser.User {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		FullName:     "Some User",
		PasswordHash: "$2a$04$notarealhash",
		Role:         domainuser.RoleClient,
		CreatorID:    "adm-1",
		Now:          time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Users.Save(context.Background(), u))
	return u
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("patches provided fields only", func(t *testing.T) {
		svc, _ := newFixture(t)
		seedUser(t, svc, "u-1", "ivan@example.com")

		name := "Ivan Sidorov"
		updated, err := svc.Update(ctx, "adm-1", "u-1", UpdateParams{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ivan Sidorov", updated.FullName)
		assert.Equal(t, "ivan@example.com", updated.Email, "email untouched")
		assert.Equal(t, "adm-1", updated.Meta.UpdatedBy)
	})

	t.Run("rejects taken email", func(t *testing.T) {
		svc, _ := newFixture(t)
		seedUser(t, svc, "u-1", "ivan@example.com")
		seedUser(t, svc, "u-2", "petr@example.com")

		email := "ivan@example.com"
		_, err := svc.Update(ctx, "adm-1", "u-2", UpdateParams{Email: &email})
		assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	})

	t.Run("keeping own email is allowed", func(t *testing.T) {
		svc, _ := newFixture(t)
		seedUser(t, svc, "u-1", "ivan@example.com")

		email := "Ivan@Example.com"
		updated, err := svc.Update(ctx, "adm-1", "u-1", UpdateParams{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "ivan@example.com", updated.Email)
	})

	t.Run("resets password", func(t *testing.T) {
		svc, _ := newFixture(t)
		before := seedUser(t, svc, "u-1", "ivan@example.com")

		password := "new-secret-password"
		updated, err := svc.Update(ctx, "adm-1", "u-1", UpdateParams{Password: &password})
		require.NoError(t, err)
		assert.NotEqual(t, before.PasswordHash, updated.PasswordHash)
		assert.NoError(t, security.PasswordHasher{}.Compare(updated.PasswordHash, password))
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newFixture(t)
		_, err := svc.Update(ctx, "adm-1", "missing", UpdateParams{})
		assert.ErrorIs(t, err, domainuser.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newFixture(t)
	seedUser(t, svc, "u-1", "ivan@example.com")

	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  "tok-1",
		UserID: "u-1",
		Role:   domainuser.RoleClient,
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, session))

	require.NoError(t, svc.Delete(ctx, "adm-1", "u-1"))

	_, err = svc.Get(ctx, "u-1")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)

	_, err = sessions.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound, "deletion revokes live sessions")
}
