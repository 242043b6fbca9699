package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/internal/application"
	"github.com/oksasatya/mailmerge/internal/interface/middleware"
	"github.com/oksasatya/mailmerge/pkg/mailer"
	"github.com/oksasatya/mailmerge/pkg/response"
	"github.com/oksasatya/mailmerge/pkg/validation"
)

// DefaultMaxAttachment caps uploaded attachments.
const DefaultMaxAttachment = 25 << 20

type MailHandler struct {
	Svc           *application.MailService
	Logger        *logrus.Logger
	MaxAttachment int64
}

func NewMailHandler(svc *application.MailService, logger *logrus.Logger) *MailHandler {
	return &MailHandler{Svc: svc, Logger: logger, MaxAttachment: DefaultMaxAttachment}
}

type composeForm struct {
	Subject    string `form:"subject" binding:"required"`
	Body       string `form:"body" binding:"required"`
	BodyFormat string `form:"body_format" binding:"omitempty,bodyformat"`
}

type testForm struct {
	composeForm
	To string `form:"to"` // accepted and ignored
}

type sendForm struct {
	composeForm
	To string `form:"to" binding:"required,loosemail"`
}

type bulkForm struct {
	composeForm
	Recipients  string `form:"recipients" binding:"required"`
	EmailColumn string `form:"email_column"`
	DelayMS     *int   `form:"delay_ms" binding:"omitempty,gte=0,lte=60000"`
}

type previewForm struct {
	composeForm
	Recipients  string `form:"recipients" binding:"required"`
	EmailColumn string `form:"email_column"`
	Row         int    `form:"row" binding:"gte=0"`
}

// Test POST /api/mail/test sends a [TEST] copy to the configured operator address.
func (h *MailHandler) Test(c *gin.Context) {
	var req testForm
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	compose, ok := h.compose(c, req.composeForm)
	if !ok {
		return
	}
	camp, err := h.Svc.SendTest(c.Request.Context(), application.SendInput{
		OperatorID: c.GetString(middleware.CtxOperatorID),
		Compose:    compose,
		To:         req.To,
	})
	if err != nil {
		writeError(c, h.Logger, err, camp)
		return
	}
	response.Success(c, http.StatusOK, camp, "test mail sent", nil)
}

// Send POST /api/mail/send sends the message unchanged to one address.
func (h *MailHandler) Send(c *gin.Context) {
	var req sendForm
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	compose, ok := h.compose(c, req.composeForm)
	if !ok {
		return
	}
	camp, err := h.Svc.SendSingle(c.Request.Context(), application.SendInput{
		OperatorID: c.GetString(middleware.CtxOperatorID),
		Compose:    compose,
		To:         req.To,
	})
	if err != nil {
		writeError(c, h.Logger, err, camp)
		return
	}
	response.Success(c, http.StatusOK, camp, "mail sent", nil)
}

// Bulk POST /api/mail/bulk personalizes and sends to every row of the pasted table.
func (h *MailHandler) Bulk(c *gin.Context) {
	var req bulkForm
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	compose, ok := h.compose(c, req.composeForm)
	if !ok {
		return
	}
	in := application.BulkInput{
		OperatorID:  c.GetString(middleware.CtxOperatorID),
		Compose:     compose,
		Recipients:  req.Recipients,
		EmailColumn: req.EmailColumn,
	}
	if req.DelayMS != nil {
		d := time.Duration(*req.DelayMS) * time.Millisecond
		in.Delay = &d
	}
	camp, err := h.Svc.SendBulk(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err, camp)
		return
	}
	response.Success(c, http.StatusOK, camp, "bulk send finished", map[string]any{"sent": camp.Sent, "failed": camp.Failed})
}

// Preview POST /api/mail/preview renders one personalized message without sending.
func (h *MailHandler) Preview(c *gin.Context) {
	var req previewForm
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Preview(application.PreviewInput{
		Compose:     application.Compose{Subject: req.Subject, Body: req.Body, BodyFormat: req.BodyFormat},
		Recipients:  req.Recipients,
		EmailColumn: req.EmailColumn,
		Row:         req.Row,
	})
	if err != nil {
		writeError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, p, "preview", nil)
}

// compose reads the optional attachment; it writes the error response itself.
func (h *MailHandler) compose(c *gin.Context, f composeForm) (application.Compose, bool) {
	out := application.Compose{Subject: f.Subject, Body: f.Body, BodyFormat: f.BodyFormat}
	att, err := h.attachment(c)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid attachment", map[string]string{"attachment": err.Error()})
		return out, false
	}
	out.Attachment = att
	return out, true
}

func (h *MailHandler) attachment(c *gin.Context) (*mailer.Attachment, error) {
	fh, err := c.FormFile("attachment")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	limit := h.MaxAttachment
	if limit <= 0 {
		limit = DefaultMaxAttachment
	}
	if fh.Size > limit {
		return nil, fmt.Errorf("larger than %d bytes", limit)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("larger than %d bytes", limit)
	}
	return mailer.NewAttachment(fh.Filename, data), nil
}
