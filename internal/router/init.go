package router

import (
	"github.com/oksasatya/mailmerge/config"
	"github.com/oksasatya/mailmerge/internal/application"
	"github.com/oksasatya/mailmerge/internal/container"
	"github.com/oksasatya/mailmerge/internal/infrastructure/archive"
	pginfra "github.com/oksasatya/mailmerge/internal/infrastructure/postgres"
	"github.com/oksasatya/mailmerge/internal/infrastructure/search"
	handlers "github.com/oksasatya/mailmerge/internal/interface/http"
	"github.com/oksasatya/mailmerge/internal/router/modules"
	"github.com/oksasatya/mailmerge/pkg/mailer"
	"github.com/oksasatya/mailmerge/pkg/mailer/templates"
)

// NewDispatcher builds the dispatcher for the configured transport and sender.
func NewDispatcher(cfg *config.Config, dialer mailer.Dialer) *mailer.Dispatcher {
	return mailer.NewDispatcher(
		dialer,
		mailer.NewBuilder(cfg.SenderName, cfg.SenderEmail),
		mailer.WithDelay(cfg.SendDelay),
		mailer.WithTestAddress(cfg.AdminEmail),
		mailer.WithLogger(container.GetLogger()),
	)
}

func buildMailService() *application.MailService {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	svc := application.NewMailService(
		NewDispatcher(cfg, container.GetMailDialer()),
		pginfra.NewCampaignRepository(container.GetPGPool()),
		templates.Layout{SenderName: cfg.SenderName, LogoURL: cfg.MailLogoURL, Footer: cfg.MailFooter},
		cfg.EmailColumn,
		logger,
	)
	svc.Disabled = !cfg.MailSendEnabled
	svc.Redis = container.GetRedis()
	// optional collaborators stay nil interfaces when not configured
	if pub := container.GetRabbitPub(); pub != nil {
		svc.Events = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		svc.Archive = archive.NewGCSArchive(gcs, cfg.GCSBucket)
	}
	if es := container.GetES(); es != nil && cfg.ESResultsIndex != "" {
		svc.Search = search.NewResultsIndex(es, cfg.ESResultsIndex)
	}
	return svc
}

func buildAuthService() *application.AuthService {
	return application.NewAuthService(
		pginfra.NewOperatorRepository(container.GetPGPool()),
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	auth := handlers.NewAuthHandler(buildAuthService(), logger, cfg.CookieDomain, cfg.CookieSecure)
	r.Add(modules.NewAuthModule(auth, jwt))

	mail := buildMailService()
	r.Add(modules.NewMailModule(handlers.NewMailHandler(mail, logger), jwt))
	r.Add(modules.NewCampaignModule(handlers.NewCampaignHandler(mail, logger), jwt))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
