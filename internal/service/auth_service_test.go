package service

import (
	"errors"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"
	"go-pos-ws/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_SeedsRolesAndAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	privRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	require.NoError(t, Bootstrap(privRepo, roleRepo, userRepo, "admin@example.com", "admin123"))
	// Second run is a no-op.
	require.NoError(t, Bootstrap(privRepo, roleRepo, userRepo, "admin@example.com", "admin123"))

	admin, err := userRepo.FindByEmail("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.RoleCode())
	assert.Nil(t, admin.CompanyID)
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))
	assert.True(t, admin.CheckPassword("admin123"))

	cashier, err := roleRepo.FindByCode(model.RoleCashier)
	require.NoError(t, err)
	assert.Len(t, cashier.Privileges, len(model.DefaultRolePrivileges[model.RoleCashier]))
}

func TestAuthService_LoginAndMe(t *testing.T) {
	db := testutil.NewTestDB(t)
	roles := testutil.SeedRoles(t, db)
	company := testutil.SeedCompany(t, db, "MAIN")
	user := testutil.SeedUser(t, db, &company.ID, roles[model.RoleCashier], "ana@example.com", "secret1")

	signer := jwt.NewSigner("test-secret", time.Hour, "test")
	svc := NewAuthService(repository.NewUserRepo(db), signer)

	_, err := svc.Login("ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login("ana@example.com", "secret1")
	require.NoError(t, err)
	assert.ElementsMatch(t, model.DefaultRolePrivileges[model.RoleCashier], res.Privileges)

	claims, err := signer.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, company.ID, *claims.CompanyID)
	assert.Equal(t, model.RoleCashier, claims.RoleCode)

	stored, err := repository.NewUserRepo(db).FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, claims.TokenVersion, stored.TokenVersion)

	me, err := svc.Me(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.User.Email)
}

func TestAuthService_InactiveUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	roles := testutil.SeedRoles(t, db)
	user := testutil.SeedUser(t, db, nil, roles[model.RoleAdmin], "root@example.com", "secret1")
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	svc := NewAuthService(repository.NewUserRepo(db), jwt.NewSigner("s", time.Hour, "test"))
	_, err := svc.Login("root@example.com", "secret1")
	assert.True(t, errors.Is(err, ErrUserInactive))
}

func TestAuthService_ChangePasswordRotatesSession(t *testing.T) {
	db := testutil.NewTestDB(t)
	roles := testutil.SeedRoles(t, db)
	user := testutil.SeedUser(t, db, nil, roles[model.RoleAdmin], "root@example.com", "secret1")
	userRepo := repository.NewUserRepo(db)
	svc := NewAuthService(userRepo, jwt.NewSigner("s", time.Hour, "test"))

	res, err := svc.Login("root@example.com", "secret1")
	require.NoError(t, err)
	claims, err := jwt.NewSigner("s", time.Hour, "test").ValidateToken(res.Token)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "nope", "secret2"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "secret1", "123"), ErrValidation)
	require.NoError(t, svc.ChangePassword(user.ID, "secret1", "secret2"))

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, claims.TokenVersion, stored.TokenVersion)
	assert.True(t, stored.CheckPassword("secret2"))
}
