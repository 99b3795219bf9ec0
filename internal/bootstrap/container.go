package bootstrap

import (
	"net/http"

	"training-os-be/internal/config"
	"training-os-be/internal/controller"
	"training-os-be/internal/pkg/logger"
	"training-os-be/internal/repository/unitofwork"
	"training-os-be/internal/service"
	"training-os-be/pkg/fitfile"
	"training-os-be/pkg/keylock"
	pktNats "training-os-be/pkg/nats"
	"training-os-be/pkg/strava"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Services, shared by the HTTP server and the CLI
	SessionService service.ISessionService
	DayNoteService service.IDayNoteService
	PlanService    service.PlanService
	SummaryService service.ISummaryService
	SyncService    service.ISyncService
	ImportService  service.IImportService

	// Controllers
	SessionController controller.ISessionController
	DayNoteController controller.IDayNoteController
	PlanController    controller.PlanController
	SummaryController controller.ISummaryController
	StravaController  controller.IStravaController
	ImportController  controller.IImportController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
	close  []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	locks := keylock.New()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	var closers []func()
	var events service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS publisher unavailable, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			events = natsPub
			closers = append(closers, natsPub.Close)
		}
	}

	// 3. Remote sync
	tokenStore := strava.NewFileTokenStore(cfg.Strava.TokenStorePath)
	syncState := strava.NewSyncState(tokenStore, cfg.Strava.ClientID, cfg.Strava.ClientSecret, cfg.Strava.OAuthURL,
		strava.WithHTTPClient(&http.Client{Timeout: cfg.Strava.RequestTimeout}),
	)
	stravaClient := strava.NewClient(cfg.Strava.APIBaseURL, cfg.Strava.RequestTimeout, syncState, strava.RetryConfig{
		MaxAttempts: cfg.Sync.RetryMaxAttempts,
		Initial:     cfg.Sync.RetryInitial,
		MaxInterval: cfg.Sync.RetryMaxInterval,
	}, sysLogger)

	// 4. Services
	reconcileService := service.NewReconcileService(uowFactory, locks, sysLogger)
	sessionService := service.NewSessionService(uowFactory, reconcileService, locks, sysLogger)
	dayNoteService := service.NewDayNoteService(uowFactory, sysLogger)
	planService := service.NewPlanService(uowFactory, sysLogger)
	summaryService := service.NewSummaryService(uowFactory, sysLogger)
	syncService := service.NewSyncService(stravaClient, syncState, reconcileService, events, cfg.Sync, sysLogger)

	publisherService := service.NewPublisherService(cfg.Import.OutcomeTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Import.OutcomeTopic, cfg.Import.ReportsDir, sysLogger)
	importService := service.NewImportService(
		fitfile.NewDecoder(),
		reconcileService,
		publisherService,
		events,
		cfg.Import.FitDir,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		SessionService: sessionService,
		DayNoteService: dayNoteService,
		PlanService:    planService,
		SummaryService: summaryService,
		SyncService:    syncService,
		ImportService:  importService,

		SessionController: controller.NewSessionController(sessionService),
		DayNoteController: controller.NewDayNoteController(dayNoteService),
		PlanController:    controller.NewPlanController(planService),
		SummaryController: controller.NewSummaryController(summaryService),
		StravaController:  controller.NewStravaController(syncService),
		ImportController:  controller.NewImportController(importService),

		ConsumerService: consumerService,
		Logger:          sysLogger,
		close:           append(closers, func() { _ = pubSub.Close() }),
	}
}

// Close releases the event bus and broker connections.
func (c *Container) Close() {
	for _, fn := range c.close {
		fn()
	}
}
