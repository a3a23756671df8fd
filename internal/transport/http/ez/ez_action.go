// Package ez 路由轻封装：一行注册动作接口，统一绑定、鉴权、错误映射
package ez

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/apperr"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/policy"
	resp "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ { return EZ{g: g, log: log} }

// PrincipalFrom 取 AuthJWT 写入的身份；未登录时 ID 为空
func PrincipalFrom(c *gin.Context) policy.Principal {
	return policy.Principal{
		ID:   c.GetString("userId"),
		Role: domain.Role(c.GetString("role")),
	}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // 自己从 c.Param / c.Query 取
)

// Action I 入参 O 出参；Handler 闭包持有各自的 service
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/templates/:id/like"
	Binder  Binder
	Auth    bool          // 要求登录（检查 userId）
	Roles   []domain.Role // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			uid := c.GetString("userId")
			if uid == "" {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 {
				role := domain.Role(c.GetString("role"))
				ok := false
				for _, r := range a.Roles {
					if role == r {
						ok = true
						break
					}
				}
				if !ok {
					c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
					return
				}
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			e.writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// POSTFILES multipart 多文件上传
func POSTFILES(e EZ, path, fieldName string, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "invalid multipart form: "+err.Error()))
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "no files uploaded"))
			return
		}
		data, err := h(c, files)
		if err != nil {
			e.writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}

// writeErr apperr 按 code 映射；500 细节只进日志，生产环境对外打码
func (e EZ) writeErr(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Code >= 500 {
			if e.log != nil {
				e.log.Error("action failed",
					zap.String("rid", c.GetString("X-Request-ID")),
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			msg := ae.Msg
			if gin.Mode() == gin.ReleaseMode {
				msg = ""
			}
			c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, msg))
			return
		}
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Msg))
		return
	}
	if e.log != nil {
		e.log.Error("action failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	msg := err.Error()
	if gin.Mode() == gin.ReleaseMode {
		msg = ""
	}
	c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, msg))
}
