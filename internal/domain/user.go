package domain

import (
	"context"
	"time"
)

// Role 闭合角色枚举，只有 USER / ADMIN 两种
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string    `gorm:"size:64" json:"name"`
	PasswordHash string    `gorm:"size:191" json:"-"`
	Role         Role      `gorm:"size:16;default:USER" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserPatch 局部更新载荷，nil 表示字段不动
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
	IsActive *bool
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	// DeleteCascade 删除用户及其名下模板的全部从属数据，
	// 顺序：answers → comments → likes → forms → questions → templates → user
	DeleteCascade(ctx context.Context, id string) error
}
