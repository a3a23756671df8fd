package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
	"github.com/mohamim360/FormBuilderApp-Backend/pkg/utils"
)

type memUserRepo struct {
	byID     map[string]*domain.User
	cascaded []string
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.byID[u.ID] = u
	return nil
}
func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return r.byID[id], nil
}
func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (r *memUserRepo) List(_ context.Context, _, _ int) ([]domain.User, int64, error) {
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}
func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.byID[u.ID] = u
	return nil
}
func (r *memUserRepo) DeleteCascade(_ context.Context, id string) error {
	r.cascaded = append(r.cascaded, id)
	delete(r.byID, id)
	return nil
}

func strp(s string) *string            { return &s }
func rolep(r domain.Role) *domain.Role { return &r }

func admin() policy.Principal { return policy.Principal{ID: "adm", Role: domain.RoleAdmin} }

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), "a@b.c", "Alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.True(t, utils.CheckPassword("secret123", u.PasswordHash))

	// 重复邮箱
	_, err = svc.Register(context.Background(), "a@b.c", "Alice2", "x")
	require.Error(t, err)
	assert.EqualError(t, err, "User already exists")

	got, err := svc.Login(context.Background(), "a@b.c", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid credentials")

	_, err = svc.Login(context.Background(), "nobody@b.c", "secret123")
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid credentials")
}

func TestLoginInactive(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewService(repo)
	u, err := svc.Register(context.Background(), "a@b.c", "Alice", "secret123")
	require.NoError(t, err)
	u.IsActive = false

	_, err = svc.Login(context.Background(), "a@b.c", "secret123")
	require.Error(t, err)
	assert.EqualError(t, err, "Invalid credentials")
}

func TestGetRequiresSelfOrAdmin(t *testing.T) {
	repo := newMemUserRepo()
	repo.byID["u1"] = &domain.User{ID: "u1"}
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), policy.Principal{ID: "u2", Role: domain.RoleUser}, "u1")
	require.Error(t, err)
	assert.EqualError(t, err, "Unauthorized")

	_, err = svc.Get(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser}, "u1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), admin(), "u1")
	require.NoError(t, err)
}

func TestUpdateRoleGuards(t *testing.T) {
	repo := newMemUserRepo()
	repo.byID["u1"] = &domain.User{ID: "u1", Role: domain.RoleUser}
	repo.byID["adm"] = &domain.User{ID: "adm", Role: domain.RoleAdmin}
	svc := NewService(repo)

	// 普通用户改不了角色，哪怕是自己的
	_, err := svc.Update(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser},
		"u1", domain.UserPatch{Role: rolep(domain.RoleAdmin)})
	require.Error(t, err)
	assert.EqualError(t, err, "Only admins can change user roles")

	// ADMIN 不能自降
	_, err = svc.Update(context.Background(), admin(), "adm", domain.UserPatch{Role: rolep(domain.RoleUser)})
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot remove your own admin access")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Code)

	// ADMIN 提升他人
	got, err := svc.Update(context.Background(), admin(), "u1", domain.UserPatch{Role: rolep(domain.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestUpdateRehashesPassword(t *testing.T) {
	repo := newMemUserRepo()
	repo.byID["u1"] = &domain.User{ID: "u1", PasswordHash: utils.HashPassword("old")}
	svc := NewService(repo)

	got, err := svc.Update(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser},
		"u1", domain.UserPatch{Password: strp("newpass"), Name: strp("Bob")})
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
	assert.True(t, utils.CheckPassword("newpass", got.PasswordHash))
	assert.False(t, utils.CheckPassword("old", got.PasswordHash))
}

func TestDeleteGuards(t *testing.T) {
	repo := newMemUserRepo()
	repo.byID["u1"] = &domain.User{ID: "u1"}
	repo.byID["adm"] = &domain.User{ID: "adm", Role: domain.RoleAdmin}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser}, "u1")
	require.Error(t, err)
	assert.EqualError(t, err, "Unauthorized")

	err = svc.Delete(context.Background(), admin(), "adm")
	require.Error(t, err)
	assert.EqualError(t, err, "Cannot delete your own account")

	err = svc.Delete(context.Background(), admin(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.cascaded)
}

func TestListAdminOnly(t *testing.T) {
	repo := newMemUserRepo()
	repo.byID["u1"] = &domain.User{ID: "u1"}
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), policy.Principal{ID: "u1", Role: domain.RoleUser}, 0, 10)
	require.Error(t, err)

	items, total, err := svc.List(context.Background(), admin(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)
}
