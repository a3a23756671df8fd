package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
)

// updateUserIn 指针字段缺省不改；role/isActive 的权限约束在 service 层
type updateUserIn struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Password *string      `json:"password" binding:"omitempty,min=6"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func (in *updateUserIn) patch() domain.UserPatch {
	return domain.UserPatch{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
		IsActive: in.IsActive,
	}
}

func mountUserActions(authed *gin.RouterGroup, d Deps) {
	ez := httpez.New(authed, d.Log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return d.Users.Get(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[updateUserIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateUserIn) (*domain.User, error) {
			return d.Users.Update(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"), in.patch())
		},
	})
}
