package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/internal/domain/entity"
	repo "github.com/oksasatya/mailmerge/internal/domain/repository"
	"github.com/oksasatya/mailmerge/pkg/helpers"
	"github.com/oksasatya/mailmerge/pkg/mailer"
	"github.com/oksasatya/mailmerge/pkg/mailer/templates"
)

// Body formats accepted in Compose.BodyFormat.
const (
	BodyHTML = "html"
	BodyText = "text"
)

const (
	dispatchLockKey  = "mail:dispatch:lock"
	perMessageBudget = 30 * time.Second
	defaultListLimit = 50
	maxListLimit     = 200
	defaultHits      = 20
	maxHits          = 100
)

// ErrSendingDisabled is returned when MAIL_SEND_ENABLED is off.
var ErrSendingDisabled = errors.New("mail sending is disabled")

// EventPublisher receives a CampaignEvent after every dispatch.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ResultArchive stores campaign exports and returns their URL.
type ResultArchive interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// ResultSearcher finds indexed send results.
type ResultSearcher interface {
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// MailService validates send requests, runs them through the dispatcher and
// records the resulting campaign. Events, Archive, Search and Redis are optional.
type MailService struct {
	Dispatcher  *mailer.Dispatcher
	Campaigns   repo.CampaignRepository
	Layout      templates.Layout
	EmailColumn string
	Disabled    bool

	Redis   *redis.Client
	Events  EventPublisher
	Archive ResultArchive
	Search  ResultSearcher
	Logger  *logrus.Logger

	now func() time.Time
}

func NewMailService(d *mailer.Dispatcher, campaigns repo.CampaignRepository, layout templates.Layout, emailColumn string, logger *logrus.Logger) *MailService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MailService{
		Dispatcher:  d,
		Campaigns:   campaigns,
		Layout:      layout,
		EmailColumn: emailColumn,
		Logger:      logger,
		now:         time.Now,
	}
}

// Compose is the message part shared by every send mode.
type Compose struct {
	Subject    string
	Body       string
	BodyFormat string // html (default) or text
	Attachment *mailer.Attachment
}

type SendInput struct {
	OperatorID string
	Compose
	To string
}

type BulkInput struct {
	OperatorID string
	Compose
	Recipients  string // pasted table text, header row first
	EmailColumn string
	Delay       *time.Duration
}

type PreviewInput struct {
	Compose
	Recipients  string
	EmailColumn string
	Row         int // zero-based
}

// Preview is one personalized message, rendered without sending.
type Preview struct {
	To         string   `json:"to"`
	Subject    string   `json:"subject"`
	HTML       string   `json:"html"`
	Variables  []string `json:"variables"`
	Recipients int      `json:"recipients"`
}

// SendTest sends the composed message to the configured operator address with a
// test subject. in.To is ignored.
func (s *MailService) SendTest(ctx context.Context, in SendInput) (*entity.Campaign, error) {
	tpl, err := s.template(in.Compose)
	if err != nil {
		return nil, err
	}
	if s.Dispatcher.TestAddress() == "" {
		return nil, mailer.ErrNoTestAddress
	}
	c := s.newCampaign(in.OperatorID, entity.ModeTest, in.Compose)
	set := mailer.RecipientSet{Address: s.Dispatcher.TestAddress()}
	return s.dispatch(ctx, c, set, 0, func(ctx context.Context) ([]mailer.SendResult, error) {
		return single(s.Dispatcher.SendTest(ctx, tpl, in.Attachment))
	})
}

// SendSingle sends the composed message unchanged to in.To.
func (s *MailService) SendSingle(ctx context.Context, in SendInput) (*entity.Campaign, error) {
	tpl, err := s.template(in.Compose)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(in.To)
	if to == "" {
		return nil, invalid("to", "is required")
	}
	if !mailer.LooksLikeEmail(to) {
		return nil, invalid("to", "must be a valid email address")
	}
	c := s.newCampaign(in.OperatorID, entity.ModeSingle, in.Compose)
	set := mailer.RecipientSet{Address: to}
	return s.dispatch(ctx, c, set, 0, func(ctx context.Context) ([]mailer.SendResult, error) {
		return s.Dispatcher.Send(ctx, tpl, set, in.Attachment, 0)
	})
}

// SendBulk personalizes the composed message for every row of in.Recipients.
// Per-recipient failures are part of the returned campaign, not an error.
func (s *MailService) SendBulk(ctx context.Context, in BulkInput) (*entity.Campaign, error) {
	tpl, err := s.template(in.Compose)
	if err != nil {
		return nil, err
	}
	table, err := s.parseRecipients(in.Recipients, in.EmailColumn)
	if err != nil {
		return nil, err
	}
	delay := s.Dispatcher.Delay()
	if in.Delay != nil {
		if *in.Delay < 0 {
			return nil, invalid("delay_ms", "must not be negative")
		}
		delay = *in.Delay
	}
	c := s.newCampaign(in.OperatorID, entity.ModeBulk, in.Compose)
	set := mailer.RecipientSet{Rows: table.Rows, EmailColumn: table.EmailColumn}
	return s.dispatch(ctx, c, set, delay, func(ctx context.Context) ([]mailer.SendResult, error) {
		return s.Dispatcher.Send(ctx, tpl, set, in.Attachment, delay)
	})
}

// Preview personalizes the message for one row without any network activity.
func (s *MailService) Preview(in PreviewInput) (*Preview, error) {
	tpl, err := s.template(in.Compose)
	if err != nil {
		return nil, err
	}
	table, err := s.parseRecipients(in.Recipients, in.EmailColumn)
	if err != nil {
		return nil, err
	}
	if in.Row < 0 || in.Row >= len(table.Rows) {
		return nil, invalid("row", fmt.Sprintf("must be between 0 and %d", len(table.Rows)-1))
	}
	row := table.Rows[in.Row]
	p := tpl.Personalize(row)
	return &Preview{
		To:         strings.TrimSpace(row.Get(table.EmailColumn)),
		Subject:    p.Subject,
		HTML:       p.HTML,
		Variables:  table.Variables(),
		Recipients: len(table.Rows),
	}, nil
}

func (s *MailService) GetCampaign(ctx context.Context, id string) (*entity.Campaign, error) {
	c, err := s.Campaigns.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *MailService) ListCampaigns(ctx context.Context, limit int) ([]entity.Campaign, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.Campaigns.List(ctx, limit)
}

// ExportCSV renders a campaign's results as a CSV file.
func (s *MailService) ExportCSV(ctx context.Context, id string) ([]byte, error) {
	c, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := mailer.WriteResultsCSV(&buf, c.Results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SearchResults queries indexed results by recipient, subject or failure reason.
func (s *MailService) SearchResults(ctx context.Context, q string, size int) ([]map[string]any, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, invalid("q", "is required")
	}
	if s.Search == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 {
		size = defaultHits
	}
	if size > maxHits {
		size = maxHits
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.Search.Search(c, q, size)
}

func (s *MailService) template(in Compose) (mailer.Template, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return mailer.Template{}, invalid("subject", "is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return mailer.Template{}, invalid("body", "is required")
	}
	switch in.BodyFormat {
	case "", BodyHTML:
		return mailer.Template{Subject: in.Subject, HTML: in.Body}, nil
	case BodyText:
		layout := s.Layout
		layout.Title = in.Subject
		html, err := templates.RenderText(layout, in.Body)
		if err != nil {
			return mailer.Template{}, fmt.Errorf("render body: %w", err)
		}
		return mailer.Template{Subject: in.Subject, HTML: html}, nil
	default:
		return mailer.Template{}, invalid("body_format", "must be html or text")
	}
}

// parseRecipients uses the requested column, else the configured default when
// the header has it, else the first column.
func (s *MailService) parseRecipients(text, column string) (*mailer.Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("recipients", "is required")
	}
	explicit := strings.TrimSpace(column) != ""
	if !explicit {
		column = s.EmailColumn
	}
	table, err := mailer.ParseTable(text, strings.TrimSpace(column))
	if errors.Is(err, mailer.ErrUnknownColumn) && !explicit {
		table, err = mailer.ParseTable(text, "")
	}
	if err == nil {
		return table, nil
	}
	if errors.Is(err, mailer.ErrUnknownColumn) {
		return nil, invalid("email_column", err.Error())
	}
	return nil, invalid("recipients", err.Error())
}

func (s *MailService) newCampaign(operatorID string, mode entity.Mode, in Compose) *entity.Campaign {
	c := &entity.Campaign{
		ID:         uuid.NewString(),
		OperatorID: operatorID,
		Mode:       mode,
		Subject:    in.Subject,
		CreatedAt:  s.now().UTC(),
	}
	if in.Attachment != nil {
		c.AttachmentName = in.Attachment.Name
	}
	return c
}

// dispatch runs send detached from the caller's cancellation so a dropped HTTP
// request cannot stop a batch halfway. A send error with results (single
// delivery failure) still records the campaign.
func (s *MailService) dispatch(ctx context.Context, c *entity.Campaign, set mailer.RecipientSet, delay time.Duration, send func(context.Context) ([]mailer.SendResult, error)) (*entity.Campaign, error) {
	if s.Disabled {
		return nil, ErrSendingDisabled
	}
	ctx = context.WithoutCancel(ctx)
	n := set.Len()
	release, err := s.lock(ctx, n, delay)
	if err != nil {
		return nil, err
	}
	defer release()

	log := s.Logger.WithFields(logrus.Fields{"campaign_id": c.ID, "mode": c.Mode, "recipients": n})
	log.Info("dispatch started")
	results, sendErr := send(ctx)
	if len(results) == 0 && sendErr != nil {
		log.WithError(sendErr).Error("dispatch failed")
		return nil, sendErr
	}
	c.Results = results
	c.Tally()
	c.FinishedAt = s.now().UTC()
	log.WithFields(logrus.Fields{"sent": c.Sent, "failed": c.Failed}).Info("dispatch finished")

	s.record(ctx, c)
	return c, sendErr
}

func (s *MailService) lock(ctx context.Context, n int, delay time.Duration) (func(), error) {
	if s.Redis == nil {
		return func() {}, nil
	}
	token := uuid.NewString()
	ttl := time.Duration(n)*(delay+perMessageBudget) + time.Minute
	ok, err := helpers.AcquireLock(ctx, s.Redis, dispatchLockKey, token, ttl)
	if err != nil {
		// fail-open when redis is down, like the rate limiter
		s.Logger.WithError(err).Warn("dispatch lock unavailable")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrDispatchBusy
	}
	return func() {
		if err := helpers.ReleaseLock(ctx, s.Redis, dispatchLockKey, token); err != nil {
			s.Logger.WithError(err).Warn("dispatch lock release failed")
		}
	}, nil
}

// record persists, archives and announces a finished campaign. The mail is
// already out at this point, so failures here are logged and not returned.
func (s *MailService) record(ctx context.Context, c *entity.Campaign) {
	log := s.Logger.WithField("campaign_id", c.ID)
	if err := s.Campaigns.Save(ctx, c); err != nil {
		log.WithError(err).Error("campaign not saved")
	}
	if s.Archive != nil {
		var buf bytes.Buffer
		if err := mailer.WriteResultsCSV(&buf, c.Results); err != nil {
			log.WithError(err).Warn("export render failed")
		} else if url, err := s.Archive.Upload(ctx, "campaigns/"+c.ID+"/results.csv", "text/csv; charset=utf-8", &buf); err != nil {
			log.WithError(err).Warn("export upload failed")
		} else {
			c.ExportURL = url
			if err := s.Campaigns.SetExportURL(ctx, c.ID, url); err != nil {
				log.WithError(err).Warn("export url not saved")
			}
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishJSON(ctx, entity.NewCampaignEvent(c)); err != nil {
			log.WithError(err).Warn("campaign event not published")
		}
	}
}

func single(res mailer.SendResult, err error) ([]mailer.SendResult, error) {
	if res.Recipient == "" {
		return nil, err
	}
	return []mailer.SendResult{res}, err
}
