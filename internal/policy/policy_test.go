package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
)

func restrictedTemplate(authorID string, allowed ...string) *domain.Template {
	t := &domain.Template{ID: "t1", AuthorID: authorID, IsPublic: false, Access: domain.AccessRestricted}
	for _, id := range allowed {
		t.AllowedUsers = append(t.AllowedUsers, domain.User{ID: id})
	}
	return t
}

func TestTemplateReadRestricted(t *testing.T) {
	tpl := restrictedTemplate("u1")
	cases := []struct {
		name    string
		p       Principal
		op      Operation
		allowed bool
		reason  string
	}{
		{"stranger denied", Principal{ID: "u2", Role: domain.RoleUser}, OpRead, false, "You do not have access to this template"},
		{"stranger fill denied", Principal{ID: "u2", Role: domain.RoleUser}, OpFill, false, "You do not have access to fill this template"},
		{"author allowed", Principal{ID: "u1", Role: domain.RoleUser}, OpRead, true, ""},
		{"admin allowed", Principal{ID: "u9", Role: domain.RoleAdmin}, OpRead, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := CanAccessTemplate(tc.p, tpl, tc.op)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestTemplateAllowListGrantsAccess(t *testing.T) {
	p := Principal{ID: "u2", Role: domain.RoleUser}

	d := CanAccessTemplate(p, restrictedTemplate("u1"), OpRead)
	assert.False(t, d.Allowed)
	assert.Equal(t, "You do not have access to this template", d.Reason)

	d = CanAccessTemplate(p, restrictedTemplate("u1", "u2"), OpRead)
	assert.True(t, d.Allowed)
}

func TestTemplateOwnerOnlyOperations(t *testing.T) {
	tpl := restrictedTemplate("u1", "u2")
	member := Principal{ID: "u2", Role: domain.RoleUser}

	// 允许名单只授予 READ/FILL，不授予编辑类操作
	assert.True(t, CanAccessTemplate(member, tpl, OpFill).Allowed)
	assert.False(t, CanAccessTemplate(member, tpl, OpEdit).Allowed)
	assert.False(t, CanAccessTemplate(member, tpl, OpDelete).Allowed)
	assert.Equal(t, "You are not authorized to view these stats",
		CanAccessTemplate(member, tpl, OpViewStats).Reason)
	assert.Equal(t, "You are not authorized to view these forms",
		CanAccessTemplate(member, tpl, OpViewSubmissions).Reason)

	owner := Principal{ID: "u1", Role: domain.RoleUser}
	assert.True(t, CanAccessTemplate(owner, tpl, OpEdit).Allowed)
	assert.True(t, CanAccessTemplate(owner, tpl, OpViewStats).Allowed)
}

func TestPublicTemplateReadableByAnyone(t *testing.T) {
	tpl := &domain.Template{ID: "t1", AuthorID: "u1", IsPublic: true, Access: domain.AccessPublic}
	d := CanAccessTemplate(Principal{ID: "u2", Role: domain.RoleUser}, tpl, OpRead)
	assert.True(t, d.Allowed)
}

func TestFormAccess(t *testing.T) {
	f := &domain.Form{
		ID:       "f1",
		UserID:   "submitter",
		Template: &domain.Template{ID: "t1", AuthorID: "author"},
	}

	assert.True(t, CanAccessForm(Principal{ID: "submitter", Role: domain.RoleUser}, f, OpRead).Allowed)
	assert.True(t, CanAccessForm(Principal{ID: "author", Role: domain.RoleUser}, f, OpRead).Allowed)
	assert.Equal(t, "You are not authorized to view this form",
		CanAccessForm(Principal{ID: "other", Role: domain.RoleUser}, f, OpRead).Reason)

	// 模板作者能看但不能改别人的表单
	assert.Equal(t, "You are not authorized to edit this form",
		CanAccessForm(Principal{ID: "author", Role: domain.RoleUser}, f, OpEdit).Reason)
	assert.Equal(t, "You are not authorized to delete this form",
		CanAccessForm(Principal{ID: "author", Role: domain.RoleUser}, f, OpDelete).Reason)
	assert.True(t, CanAccessForm(Principal{ID: "submitter", Role: domain.RoleUser}, f, OpEdit).Allowed)
	assert.True(t, CanAccessForm(Principal{ID: "x", Role: domain.RoleAdmin}, f, OpDelete).Allowed)
}

func TestChangeRoleGuards(t *testing.T) {
	admin := Principal{ID: "a1", Role: domain.RoleAdmin}
	user := Principal{ID: "u1", Role: domain.RoleUser}

	d := CanChangeRole(user, "u2", domain.RoleAdmin)
	assert.False(t, d.Allowed)
	assert.Equal(t, "Only admins can change user roles", d.Reason)

	// 自降权限被拒
	d = CanChangeRole(admin, "a1", domain.RoleUser)
	assert.False(t, d.Allowed)
	assert.Equal(t, "Cannot remove your own admin access", d.Reason)

	// 对其他管理员降级是允许的
	assert.True(t, CanChangeRole(admin, "a2", domain.RoleUser).Allowed)
	assert.True(t, CanChangeRole(admin, "a1", domain.RoleAdmin).Allowed)
}

func TestCanManageUser(t *testing.T) {
	assert.True(t, CanManageUser(Principal{ID: "u1", Role: domain.RoleUser}, "u1").Allowed)
	assert.False(t, CanManageUser(Principal{ID: "u1", Role: domain.RoleUser}, "u2").Allowed)
	assert.True(t, CanManageUser(Principal{ID: "a1", Role: domain.RoleAdmin}, "u2").Allowed)
}
