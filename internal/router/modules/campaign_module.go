package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/mailmerge/internal/container"
	handlers "github.com/oksasatya/mailmerge/internal/interface/http"
	"github.com/oksasatya/mailmerge/internal/interface/middleware"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// CampaignModule exposes campaign history, result exports and result search.
type CampaignModule struct {
	Handler *handlers.CampaignHandler
	JWT     *helpers.JWTManager
}

func NewCampaignModule(h *handlers.CampaignHandler, jwt *helpers.JWTManager) *CampaignModule {
	return &CampaignModule{Handler: h, JWT: jwt}
}

func (m *CampaignModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByOperatorID(), nil),
	)
	{
		auth.GET("/campaigns", m.Handler.List)
		auth.GET("/campaigns/:id", m.Handler.Get)
		auth.GET("/campaigns/:id/results.csv", m.Handler.Export)
		// Search send results via Elasticsearch
		auth.GET("/results/search", m.Handler.Search)
	}
}
