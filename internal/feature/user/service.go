// Package user 注册/登录与用户管理
package user

import (
	"context"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
	"github.com/mohamim360/FormBuilderApp-Backend/pkg/utils"
)

type Service struct {
	users domain.UserRepository
}

func NewService(users domain.UserRepository) *Service {
	return &Service{users: users}
}

func (s *Service) Register(ctx context.Context, email, name, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.BadRequest("User already exists")
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 不区分「用户不存在 / 已停用 / 密码错」，统一同一文案防止枚举
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, apperr.BadRequest("Invalid credentials")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, p policy.Principal, id string) (*domain.User, error) {
	if d := policy.CanManageUser(p, id); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, p policy.Principal, id string, patch domain.UserPatch) (*domain.User, error) {
	if d := policy.CanManageUser(p, id); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, apperr.BadRequest("Invalid role")
		}
		if d := policy.CanChangeRole(p, id, *patch.Role); !d.Allowed {
			// 自降权限是冲突而不是越权，沿用对外 400
			if d.Reason == "Cannot remove your own admin access" {
				return nil, apperr.Conflict(d.Reason)
			}
			return nil, apperr.Forbidden(d.Reason)
		}
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		u.PasswordHash = utils.HashPassword(*patch.Password)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete 仅 ADMIN，且不能删自己；连带清掉名下模板/表单的所有从属数据
func (s *Service) Delete(ctx context.Context, p policy.Principal, id string) error {
	if !p.IsAdmin() {
		return apperr.Forbidden("Unauthorized")
	}
	if p.ID == id {
		return apperr.Conflict("Cannot delete your own account")
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.users.DeleteCascade(ctx, id)
}

func (s *Service) List(ctx context.Context, p policy.Principal, offset, limit int) ([]domain.User, int64, error) {
	if !p.IsAdmin() {
		return nil, 0, apperr.Forbidden("Unauthorized")
	}
	return s.users.List(ctx, offset, limit)
}

func (s *Service) load(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}
