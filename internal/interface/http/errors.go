package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/internal/application"
	"github.com/oksasatya/mailmerge/pkg/mailer"
	"github.com/oksasatya/mailmerge/pkg/response"
)

// writeError maps service errors onto status codes. data goes into the error
// details when the failure still produced something worth returning.
func writeError(c *gin.Context, logger *logrus.Logger, err error, data any) {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error[any](c, http.StatusBadRequest, "invalid request", map[string]string{ve.Field: ve.Message})
	case errors.Is(err, application.ErrCampaignNotFound):
		response.Error[any](c, http.StatusNotFound, "campaign not found", nil)
	case errors.Is(err, application.ErrDispatchBusy):
		response.Error[any](c, http.StatusConflict, "another dispatch is in progress", nil)
	case errors.Is(err, application.ErrSendingDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, "mail sending is disabled", nil)
	case mailer.IsSessionError(err):
		response.Error[any](c, http.StatusBadGateway, "mail session failed", err.Error())
	case errors.Is(err, mailer.ErrDeliveryFailed):
		response.Error[any](c, http.StatusBadGateway, "delivery failed", gin.H{"reason": err.Error(), "campaign": data})
	default:
		if logger != nil {
			logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
