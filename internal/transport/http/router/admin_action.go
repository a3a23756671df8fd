package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
	resp "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/response"
)

// mountAdminActions 管理端用户治理：列表、查看、改角色/封禁、删号
func mountAdminActions(admin *gin.RouterGroup, d Deps) {
	ez := httpez.New(admin, d.Log)

	httpez.RegisterAction(ez, httpez.Action[pageQ, resp.Page[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.User], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 20, 100)
			items, total, err := d.Users.List(c.Request.Context(), httpez.PrincipalFrom(c), offset, limit)
			if err != nil {
				return resp.Page[domain.User]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return d.Users.Get(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"))
		},
	})

	// 改角色 / 启停用（isActive=false 即封禁）
	httpez.RegisterAction(ez, httpez.Action[updateUserIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *updateUserIn) (*domain.User, error) {
			return d.Users.Update(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"), in.patch())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Users.Delete(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}
