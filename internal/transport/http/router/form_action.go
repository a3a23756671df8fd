package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/form"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
	resp "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/response"
)

func mountFormActions(authed *gin.RouterGroup, d Deps) {
	ez := httpez.New(authed, d.Log)

	type createIn struct {
		TemplateID string             `json:"templateId" binding:"required"`
		Answers    []form.AnswerInput `json:"answers"    binding:"required"`
	}
	httpez.RegisterAction(ez, httpez.Action[createIn, *domain.Form]{
		Method: http.MethodPost,
		Path:   "/forms",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *createIn) (*domain.Form, error) {
			return d.Forms.Create(c.Request.Context(), httpez.PrincipalFrom(c), in.TemplateID, in.Answers)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[pageQ, resp.Page[domain.Form]]{
		Method: http.MethodGet,
		Path:   "/forms/my",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Form], error) {
			page, limit, offset := resp.NormalizePageQuery(in.Page, in.Limit, 10, 100)
			items, total, err := d.Forms.ListMine(c.Request.Context(), httpez.PrincipalFrom(c).ID, offset, limit)
			if err != nil {
				return resp.Page[domain.Form]{}, err
			}
			return resp.NewPage(items, total, page, limit), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Form]{
		Method: http.MethodGet,
		Path:   "/forms/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Form, error) {
			return d.Forms.Get(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"))
		},
	})

	type updateIn struct {
		Answers []form.AnswerInput `json:"answers" binding:"required"`
	}
	httpez.RegisterAction(ez, httpez.Action[updateIn, *domain.Form]{
		Method: http.MethodPut,
		Path:   "/forms/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateIn) (*domain.Form, error) {
			return d.Forms.Update(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id"), in.Answers)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/forms/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := d.Forms.Delete(c.Request.Context(), httpez.PrincipalFrom(c), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"id": c.Param("id")}, nil
		},
	})
}
