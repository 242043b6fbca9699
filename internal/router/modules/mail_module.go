package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/mailmerge/internal/container"
	handlers "github.com/oksasatya/mailmerge/internal/interface/http"
	"github.com/oksasatya/mailmerge/internal/interface/middleware"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// MailModule wires the send endpoints; all of them need an operator session.
type MailModule struct {
	Handler *handlers.MailHandler
	JWT     *helpers.JWTManager
}

func NewMailModule(h *handlers.MailHandler, jwt *helpers.JWTManager) *MailModule {
	return &MailModule{Handler: h, JWT: jwt}
}

func (m *MailModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/mail")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		// Sends are slow and sequential; previews are cheap
		sendLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByOperatorID(), nil)
		previewLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByOperatorID(), nil)

		auth.POST("/test", sendLimiter, m.Handler.Test)
		auth.POST("/send", sendLimiter, m.Handler.Send)
		auth.POST("/bulk", sendLimiter, m.Handler.Bulk)
		auth.POST("/preview", previewLimiter, m.Handler.Preview)
	}
}
