// Package router HTTP 路由装配
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/auth"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/crm"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/form"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/stats"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/template"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/feature/user"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/storage"
	mdw "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/middleware"
)

// Deps 两个引擎共用的依赖集合，由 main 装配后传入
type Deps struct {
	Log *zap.Logger
	JWT *auth.JWTer

	Users     *user.Service
	Templates *template.Service
	Forms     *form.Service
	Stats     *stats.Service

	Uploads *storage.Cloudinary // 可为 nil（未配置）
	CRM     crm.Pusher          // 可为 nil（未配置）
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api/v1")

	// 公共分组：带了 token 就识别身份（发现接口要按 viewer 过滤限制模板）
	public := api.Group("")
	public.Use(mdw.OptionalAuthJWT(d.JWT))

	// 鉴权分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, ""))

	mountAuthActions(public, authed, d)
	mountTemplateActions(public, authed, d)
	mountFormActions(authed, d)
	mountUserActions(authed, d)
	mountUploadActions(authed, d)

	// registry 注册的扩展模块（CRM 推送等）
	if d.CRM != nil {
		Register(&crmModule{push: d.CRM, log: d.Log})
	}
	MountAllAPI(authed)

	return r
}
