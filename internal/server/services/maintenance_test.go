package services

import (
	"context"
	"testing"
	"time"

	"github.com/chengshang-tools/launcher-auth/internal/common"
	"github.com/chengshang-tools/launcher-auth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenance_CreateAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.maint.CreateAdmin(ctx, "root", "admin@2025csch")
	require.NoError(t, err)
	assert.True(t, v.IsAdmin())

	_, err = f.maint.CreateAdmin(ctx, "root", "admin@2025csch")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	_, err = f.maint.CreateAdmin(ctx, "ro", "admin@2025csch")
	assert.ErrorIs(t, err, common.ErrInvalidUsername)

	_, err = f.maint.CreateAdmin(ctx, "other", "short")
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)

	stored, err := f.repos.Users().GetByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "fac998bc601b4f9d4f689c8ada57480ef7f7785791befe08b8c381e2e600af23", stored.PasswordHash)
}

func TestMaintenance_ResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "bob", "pw123456", models.RoleUser)

	_, err := f.svc.Login(ctx, LoginRequest{UserName: "bob", Password: "pw123456", AutoLogin: true})
	require.NoError(t, err)

	require.NoError(t, f.maint.ResetPassword(ctx, "bob", "test123456"))
	assert.Equal(t, "4050e0b66331805d96b30cedb8dcd0b84e81d56c71084a9d7ee291caaf03a172", f.user(t, u.ID).PasswordHash)
	assert.Equal(t, 0, f.repos.MemoryTokens().CountForUser(u.ID))

	assert.ErrorIs(t, f.maint.ResetPassword(ctx, "nobody", "test123456"), common.ErrUserNotFound)
	assert.ErrorIs(t, f.maint.ResetPassword(ctx, "bob", "123"), common.ErrPasswordTooShort)
}

func TestMaintenance_BackfillLoginCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice", "secret1", models.RoleUser)
	bob := f.seedUser(t, "bob", "pw123456", models.RoleUser)
	carol := f.seedUser(t, "carol", "pw123456", models.RoleUser)

	for i := 0; i < 3; i++ {
		_, err := f.repos.Sessions().Open(ctx, &models.Session{UserID: alice.ID, LoginAt: t0.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := f.repos.Sessions().Open(ctx, &models.Session{UserID: bob.ID, LoginAt: t0})
	require.NoError(t, err)
	require.NoError(t, f.repos.Users().SetLoginCount(ctx, bob.ID, 1))

	updated, err := f.maint.BackfillLoginCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated, "only alice differed")

	assert.Equal(t, int64(3), f.user(t, alice.ID).LoginCount)
	assert.Equal(t, int64(1), f.user(t, bob.ID).LoginCount)
	assert.Equal(t, int64(0), f.user(t, carol.ID).LoginCount)
}
