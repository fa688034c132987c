package repository

import (
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaults_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	privileges := NewPrivilegeRepo(db)
	roles := NewRoleRepo(db)

	for i := 0; i < 2; i++ {
		require.NoError(t, privileges.SeedDefaults())
		require.NoError(t, roles.SeedDefaults())
	}

	all, err := privileges.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultPrivileges))

	allRoles, err := roles.FindAll()
	require.NoError(t, err)
	assert.Len(t, allRoles, len(model.DefaultRoles))
}

func TestUserRepo_EmailIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	seeded := testutil.SeedRoles(t, db)
	repo := NewUserRepo(db)

	user := &model.User{Email: "  Ana@Example.COM ", FullName: "Ana", RoleID: &seeded[model.RoleCashier].ID, IsActive: true}
	require.NoError(t, user.SetPassword("secret1"))
	require.NoError(t, repo.Create(user))
	assert.Equal(t, "ana@example.com", user.Email)

	found, err := repo.FindByEmail("ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, model.RoleCashier, found.RoleCode())

	require.NoError(t, repo.UpdateTokenVersion(user.ID, "v2"))
	found, err = repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", found.TokenVersion)
}
