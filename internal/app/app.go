package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/handlers"
	"github.com/ternarybob/colligo/internal/httpclient"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/services/capture"
	"github.com/ternarybob/colligo/internal/services/events"
	"github.com/ternarybob/colligo/internal/services/extraction"
	"github.com/ternarybob/colligo/internal/services/jobs"
	"github.com/ternarybob/colligo/internal/services/submit"
	"github.com/ternarybob/colligo/internal/services/tags"
	"github.com/ternarybob/colligo/internal/services/thumbnail"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Capture pipeline services
	EventService     interfaces.EventService
	ExtractionClient *extraction.Client
	JobPoller        interfaces.JobPoller
	ThumbnailDeriver interfaces.ThumbnailDeriver
	TagResolver      interfaces.TagResolver
	Submitter        interfaces.SubmissionCoordinator
	Sessions         *capture.Manager

	// HTTP handlers
	CaptureHandler *handlers.CaptureHandler
	JobHandler     *handlers.JobHandler
	APIHandler     *handlers.APIHandler
	WSHandler      *handlers.WebSocketHandler
}

// New wires the full capture pipeline from configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	app.EventService = events.NewService(logger)
	app.WSHandler = handlers.NewWebSocketHandler(app.EventService, logger)

	credentials := interfaces.StaticCredential(cfg.Backend.BearerToken)
	clientOpts := []extraction.ClientOption{
		extraction.WithLogger(logger),
		extraction.WithHTTPClient(httpclient.NewHTTPClientWithAuth(credentials, cfg.Backend.RequestTimeout)),
		extraction.WithTimeout(cfg.Backend.RequestTimeout),
		extraction.WithRateLimit(cfg.Backend.RateLimit),
	}
	if cfg.Backend.ProbeFallback {
		clientOpts = append(clientOpts, extraction.WithProbeFallback(cfg.Backend.UserAgent, cfg.Backend.MaxProbeSize))
	}
	app.ExtractionClient = extraction.NewClient(cfg.Backend.BaseURL, credentials, clientOpts...)

	app.JobPoller = jobs.NewPoller(
		app.ExtractionClient,
		storageManager.JobStorage(),
		cfg.Capture.QueuedDomains,
		logger,
	)
	app.ThumbnailDeriver = thumbnail.NewDeriver(cfg, logger)
	app.TagResolver = tags.NewResolver(app.ExtractionClient, logger)
	app.Submitter = submit.NewCoordinator(app.ExtractionClient, app.TagResolver, logger)

	app.Sessions = capture.NewManager(capture.Deps{
		Extractor: app.ExtractionClient,
		Uploader:  app.ExtractionClient,
		Deriver:   app.ThumbnailDeriver,
		Poller:    app.JobPoller,
		Submitter: app.Submitter,
		Drafts:    storageManager.DraftStorage(),
		Events:    app.EventService,
		Config:    cfg.Capture,
		Logger:    logger,
	})

	app.CaptureHandler = handlers.NewCaptureHandler(app.Sessions, cfg.Backend.MaxUploadSize, logger)
	app.JobHandler = handlers.NewJobHandler(app.JobPoller, app.Sessions, logger)
	app.APIHandler = handlers.NewAPIHandler()

	logger.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("storage", cfg.Storage.Badger.Path).
		Msg("Application initialized")

	return app, nil
}

// Close shuts down application components in reverse dependency order.
func (a *App) Close() error {
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
