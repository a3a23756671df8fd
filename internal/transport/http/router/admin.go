package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/core/server"
	"github.com/mohamim360/FormBuilderApp-Backend/internal/domain"
	mdw "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	// ginzap 访问日志 + panic 恢复 + CORS 的基础引擎
	r := server.NewRouter(d.Log)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(100, 200),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(4<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 管理端 v1，统一要求 ADMIN 角色
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, domain.RoleAdmin))

	if d.CRM != nil {
		Register(&crmModule{push: d.CRM, log: d.Log})
	}
	MountAllAdmin(admin)

	mountAdminActions(admin, d)

	return r
}
