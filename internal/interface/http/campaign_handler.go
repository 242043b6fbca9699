package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/internal/application"
	"github.com/oksasatya/mailmerge/pkg/response"
)

type CampaignHandler struct {
	Svc    *application.MailService
	Logger *logrus.Logger
}

func NewCampaignHandler(svc *application.MailService, logger *logrus.Logger) *CampaignHandler {
	return &CampaignHandler{Svc: svc, Logger: logger}
}

// List GET /api/campaigns?limit=
func (h *CampaignHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.Svc.ListCampaigns(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, list, "campaigns", map[string]any{"count": len(list)})
}

// Get GET /api/campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	camp, err := h.Svc.GetCampaign(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, camp, "campaign", nil)
}

// Export GET /api/campaigns/:id/results.csv
func (h *CampaignHandler) Export(c *gin.Context) {
	id, ok := campaignID(c)
	if !ok {
		return
	}
	b, err := h.Svc.ExportCSV(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="results-`+id+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

// Search GET /api/results/search?q=&size=
func (h *CampaignHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchResults(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "results", map[string]any{"count": len(hits)})
}

func campaignID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "campaign not found", nil)
		return "", false
	}
	return id.String(), true
}
