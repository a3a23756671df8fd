package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
)

type authOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func mountAuthActions(public, authed *gin.RouterGroup, d Deps) {
	ezPublic := httpez.New(public, d.Log)

	type registerIn struct {
		Name     string `json:"name"     binding:"required,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	httpez.RegisterAction(ezPublic, httpez.Action[registerIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (authOut, error) {
			u, err := d.Users.Register(c.Request.Context(),
				strings.ToLower(strings.TrimSpace(in.Email)), strings.TrimSpace(in.Name), in.Password)
			if err != nil {
				return authOut{}, err
			}
			tok, err := d.JWT.Issue(u.ID, u.Role)
			if err != nil {
				return authOut{}, apperr.Internal("issue token failed", err)
			}
			return authOut{Token: tok, User: u}, nil
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction(ezPublic, httpez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (authOut, error) {
			u, err := d.Users.Login(c.Request.Context(),
				strings.ToLower(strings.TrimSpace(in.Email)), in.Password)
			if err != nil {
				return authOut{}, err
			}
			tok, err := d.JWT.Issue(u.ID, u.Role)
			if err != nil {
				return authOut{}, apperr.Internal("issue token failed", err)
			}
			return authOut{Token: tok, User: u}, nil
		},
	})

	ezAuth := httpez.New(authed, d.Log)

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			p := httpez.PrincipalFrom(c)
			return d.Users.Get(c.Request.Context(), p, p.ID)
		},
	})
}
