package bootstrap

import (
	"context"
	"log"
	"time"

	"leadscout-be/internal/config"
	"leadscout-be/internal/constant"
	"leadscout-be/internal/controller"
	"leadscout-be/internal/handler"
	"leadscout-be/internal/pkg/logger"
	"leadscout-be/internal/pkg/mailer"
	"leadscout-be/internal/repository/implementation"
	"leadscout-be/internal/service"
	"leadscout-be/internal/websocket"
	"leadscout-be/pkg/confluence"
	"leadscout-be/pkg/exa"
	"leadscout-be/pkg/jira"

	pktNats "leadscout-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	ResearchController controller.IResearchController
	LeadController     controller.ILeadController
	SettingsController controller.ISettingsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	JobsHandler  *handler.JobsHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus (in-process job update fan-out)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/jobs.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Bridge: job updates published on the in-process bus reach the hub.
	go bridgeJobUpdates(pubSub, wsHub, wsLogger)

	// External APIs
	researchClient := exa.NewClient(cfg.Exa.APIKey, pollPolicy(cfg.Research))
	syncResearchClient := researchClient.WithRetryPolicy(syncPollPolicy(cfg.Research))
	wikiClient := confluence.NewClient(cfg.Atlassian.BaseURL, cfg.Atlassian.Email, cfg.Atlassian.APIToken)
	trackerClient := jira.NewClient(cfg.Atlassian.BaseURL, cfg.Atlassian.Email, cfg.Atlassian.APIToken)

	// 3. Repositories
	jobRepo := implementation.NewJobRepository(rdb)
	leadRepo := implementation.NewLeadRepository(rdb)
	historyRepo := implementation.NewHistoryRepository(rdb)
	settingsRepo := implementation.NewSettingsRepository(rdb)

	// 4. Services
	publisherService := service.NewPublisherService(constant.JobUpdatesTopic, pubSub)

	researchService := service.NewResearchService(jobRepo, natsPub, syncResearchClient, sysLogger)
	consumerService := service.NewConsumerService(
		natsSub,
		jobRepo,
		settingsRepo,
		researchClient,
		wikiClient,
		trackerClient,
		emailService,
		natsPub,
		publisherService,
		cfg,
		sysLogger,
	)
	// Start Service (Worker)
	if natsSub != nil {
		if err := consumerService.Start(); err != nil {
			log.Printf("[WARN] Failed to start research consumer: %v", err)
		}
	}

	leadService := service.NewLeadService(leadRepo, historyRepo, settingsRepo, researchClient, trackerClient, cfg, sysLogger)
	settingsService := service.NewSettingsService(settingsRepo)

	authService, err := service.NewAuthService(cfg.Auth.AdminPassword, cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize auth: %v", err)
	}

	// 5. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		ResearchController: controller.NewResearchController(researchService),
		LeadController:     controller.NewLeadController(leadService),
		SettingsController: controller.NewSettingsController(settingsService),

		ConsumerService: consumerService,
		JobsHandler:     handler.NewJobsHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,
	}
}

// bridgeJobUpdates forwards every message on the job-updates topic to the
// websocket hub.
func bridgeJobUpdates(pubSub *gochannel.GoChannel, hub *websocket.Hub, log logger.ILogger) {
	messages, err := pubSub.Subscribe(context.Background(), constant.JobUpdatesTopic)
	if err != nil {
		log.Error("Bootstrap", "Failed to subscribe to job updates", map[string]interface{}{"error": err.Error()})
		return
	}
	for msg := range messages {
		hub.Broadcast(msg.Payload)
		msg.Ack()
	}
}

func pollPolicy(rc config.ResearchConfig) exa.RetryPolicy {
	p := exa.DefaultRetryPolicy()
	if rc.PollBaseDelayMS > 0 {
		p.BaseDelay = time.Duration(rc.PollBaseDelayMS) * time.Millisecond
	}
	if rc.PollMultiplier > 1 {
		p.Multiplier = rc.PollMultiplier
	}
	if rc.PollMaxDelayMS > 0 {
		p.MaxDelay = time.Duration(rc.PollMaxDelayMS) * time.Millisecond
	}
	if rc.PollMaxAttempts > 0 {
		p.MaxAttempts = rc.PollMaxAttempts
	}
	return p
}

func syncPollPolicy(rc config.ResearchConfig) exa.RetryPolicy {
	p := exa.SyncRetryPolicy()
	if rc.PollBaseDelayMS > 0 {
		p.BaseDelay = time.Duration(rc.PollBaseDelayMS) * time.Millisecond
	}
	if rc.SyncPollAttempts > 0 {
		p.MaxAttempts = rc.SyncPollAttempts
	}
	return p
}
