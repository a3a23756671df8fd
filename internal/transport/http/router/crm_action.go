package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohamim360/FormBuilderApp-Backend/internal/crm"
	httpez "github.com/mohamim360/FormBuilderApp-Backend/internal/transport/http/ez"
)

// crmModule 把联系人推送同时挂到用户端和管理端
type crmModule struct {
	push crm.Pusher
	log  *zap.Logger
}

func (m *crmModule) Priority() int { return 200 } // 业务路由之后

func (m *crmModule) MountAPI(g *gin.RouterGroup)   { m.mount(g) }
func (m *crmModule) MountAdmin(g *gin.RouterGroup) { m.mount(g) }

func (m *crmModule) mount(g *gin.RouterGroup) {
	ez := httpez.New(g, m.log)
	httpez.RegisterAction(ez, httpez.Action[crm.Contact, *crm.Result]{
		Method: http.MethodPost,
		Path:   "/crm/contacts",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *crm.Contact) (*crm.Result, error) {
			return m.push.CreateContact(c.Request.Context(), *in)
		},
	})
}
