// Package policy 访问控制决策，纯函数无副作用。
// 拒绝原因文案是对外 API 契约的一部分，按原样返回给调用方。
package policy

import "github.com/mohamim360/FormBuilderApp-Backend/internal/domain"

// Operation 资源操作枚举
type Operation int

const (
	OpRead Operation = iota
	OpFill
	OpEdit
	OpDelete
	OpViewStats
	OpViewSubmissions
)

// Principal 请求携带的已认证身份
type Principal struct {
	ID   string
	Role domain.Role
}

func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision            { return Decision{Allowed: true} }
func Deny(reason string) Decision { return Decision{Reason: reason} }

// CanAccessTemplate 模板访问判定。
// READ/FILL：公开、作者本人、或允许名单内；其余操作仅限作者。
// ADMIN 永远放行。
func CanAccessTemplate(p Principal, t *domain.Template, op Operation) Decision {
	if p.IsAdmin() {
		return Allow()
	}
	switch op {
	case OpRead:
		if t.IsPublic || t.AuthorID == p.ID || t.IsAllowed(p.ID) {
			return Allow()
		}
		return Deny("You do not have access to this template")
	case OpFill:
		if t.IsPublic || t.AuthorID == p.ID || t.IsAllowed(p.ID) {
			return Allow()
		}
		return Deny("You do not have access to fill this template")
	case OpEdit:
		if t.AuthorID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to update this template")
	case OpDelete:
		if t.AuthorID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to delete this template")
	case OpViewStats:
		if t.AuthorID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to view these stats")
	case OpViewSubmissions:
		if t.AuthorID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to view these forms")
	}
	return Deny("You do not have access to this template")
}

// CanAccessForm 表单访问判定。
// READ：提交人或模板作者；EDIT/DELETE：仅提交人。ADMIN 永远放行。
func CanAccessForm(p Principal, f *domain.Form, op Operation) Decision {
	if p.IsAdmin() {
		return Allow()
	}
	switch op {
	case OpRead:
		if f.UserID == p.ID {
			return Allow()
		}
		if f.Template != nil && f.Template.AuthorID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to view this form")
	case OpEdit:
		if f.UserID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to edit this form")
	case OpDelete:
		if f.UserID == p.ID {
			return Allow()
		}
		return Deny("You are not authorized to delete this form")
	}
	return Deny("You are not authorized to view this form")
}

// CanManageUser 用户资料的查看/修改：本人或 ADMIN
func CanManageUser(p Principal, targetID string) Decision {
	if p.IsAdmin() || p.ID == targetID {
		return Allow()
	}
	return Deny("Unauthorized")
}

// CanChangeRole 角色变更守卫：
// 非 ADMIN 不得改任何人的 role；ADMIN 不得把自己降为 USER。
func CanChangeRole(p Principal, targetID string, newRole domain.Role) Decision {
	if !p.IsAdmin() {
		return Deny("Only admins can change user roles")
	}
	if p.ID == targetID && newRole == domain.RoleUser {
		return Deny("Cannot remove your own admin access")
	}
	return Allow()
}
