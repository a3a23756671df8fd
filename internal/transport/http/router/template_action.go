package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/stats"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/template"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
	resp "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/response"
)

type pageQ struct {
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=10"`
	Q     string `form:"q"`
}

type limitQ struct {
	Limit int `form:"limit,default=10"`
}

func mountTemplateActions(public, authed *gin.RouterGroup, d Deps) {
	ezPublic := httpez.New(public, d.Log)
	ezAuth := httpez.New(authed, d.Log)

	// ---- 发现（公共，带 token 时按 viewer 放宽限制模板的可见性） ----

	httpez.RegisterAction(ezPublic, httpez.Action[pageQ, resp.Page[domain.Template]]{
		Method: http.MethodGet,
		Path:   "/templates",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Template], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			viewer := httpez.PrincipalFrom(c)
			items, total, err := d.Templates.Search(c.Request.Context(), viewer.ID, in.Q, offset, limit)
			if err != nil {
				return resp.Page[domain.Template]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[limitQ, []domain.Template]{
		Method: http.MethodGet,
		Path:   "/templates/popular",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *limitQ) ([]domain.Template, error) {
			_, limit, _ := resp.NormalizePageQuery(1, in.Limit, 10, 50)
			return d.Templates.Popular(c.Request.Context(), limit)
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[limitQ, []domain.Template]{
		Method: http.MethodGet,
		Path:   "/templates/latest",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *limitQ) ([]domain.Template, error) {
			_, limit, _ := resp.NormalizePageQuery(1, in.Limit, 10, 50)
			return d.Templates.Latest(c.Request.Context(), limit)
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[pageQ, resp.Page[domain.Template]]{
		Method: http.MethodGet,
		Path:   "/templates/tag/:name",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Template], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			viewer := httpez.PrincipalFrom(c)
			items, total, err := d.Templates.ByTag(c.Request.Context(), viewer.ID, c.Param("name"), offset, limit)
			if err != nil {
				return resp.Page[domain.Template]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[limitQ, []domain.TagCount]{
		Method: http.MethodGet,
		Path:   "/tags/popular",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *limitQ) ([]domain.TagCount, error) {
			_, limit, _ := resp.NormalizePageQuery(1, in.Limit, 50, 100)
			return d.Templates.PopularTags(c.Request.Context(), limit)
		},
	})

	// ---- 详情与 CRUD ----

	httpez.RegisterAction(ezAuth, httpez.Action[pageQ, resp.Page[domain.Template]]{
		Method: http.MethodGet,
		Path:   "/templates/my",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Template], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			items, total, err := d.Templates.Mine(c.Request.Context(), httpez.PrincipalFrom(c).ID, offset, limit)
			if err != nil {
				return resp.Page[domain.Template]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[struct{}, *domain.Template]{
		Method: http.MethodGet,
		Path:   "/templates/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Template, error) {
			return d.Templates.Get(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[template.CreateInput, *domain.Template]{
		Method: http.MethodPost,
		Path:   "/templates",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *template.CreateInput) (*domain.Template, error) {
			return d.Templates.Create(c.Request.Context(), httpez.PrincipalFrom(c).ID, *in)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[template.UpdateInput, *domain.Template]{
		Method: http.MethodPut,
		Path:   "/templates/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *template.UpdateInput) (*domain.Template, error) {
			return d.Templates.Update(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/templates/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Templates.Delete(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})

	// ---- 提交与统计（仅作者/ADMIN） ----

	httpez.RegisterAction(ezAuth, httpez.Action[pageQ, resp.Page[domain.Form]]{
		Method: http.MethodGet,
		Path:   "/templates/:id/forms",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Form], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			items, total, err := d.Templates.Forms(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"), offset, limit)
			if err != nil {
				return resp.Page[domain.Form]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, *stats.TemplateStats]{
		Method: http.MethodGet,
		Path:   "/templates/:id/stats",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*stats.TemplateStats, error) {
			return d.Stats.ForTemplate(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"))
		},
	})

	// ---- 社交 ----

	httpez.RegisterAction(ezPublic, httpez.Action[pageQ, resp.Page[domain.Comment]]{
		Method: http.MethodGet,
		Path:   "/templates/:id/comments",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Comment], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			items, total, err := d.Templates.Comments(c.Request.Context(), c.Param("id"), offset, limit)
			if err != nil {
				return resp.Page[domain.Comment]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	type commentIn struct {
		Content string `json:"content" binding:"required"`
	}
	httpez.RegisterAction(ezAuth, httpez.Action[commentIn, *domain.Comment]{
		Method: http.MethodPost,
		Path:   "/templates/:id/comments",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *commentIn) (*domain.Comment, error) {
			return d.Templates.AddComment(c.Request.Context(),
				httpez.PrincipalFrom(c).ID, c.Param("id"), in.Content)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/templates/:id/like",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Templates.Like(c.Request.Context(), httpez.PrincipalFrom(c).ID, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"liked": true}, nil
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/templates/:id/like",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Templates.Unlike(c.Request.Context(), httpez.PrincipalFrom(c).ID, c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"liked": false}, nil
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/templates/:id/like",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			liked, err := d.Templates.HasLiked(c.Request.Context(), httpez.PrincipalFrom(c).ID, c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"liked": liked}, nil
		},
	})
}
