package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/dripkit/dripkit/config"
	"github.com/dripkit/dripkit/internal/database"
	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/internal/repository"
	"github.com/dripkit/dripkit/internal/service"
	"github.com/dripkit/dripkit/pkg/logger"
	"github.com/dripkit/dripkit/pkg/mailer"
	"github.com/dripkit/dripkit/pkg/ratelimiter"
	"github.com/dripkit/dripkit/pkg/templates"
)

// App wires the engine together: database, repositories, services and the
// scheduler loop.
type App struct {
	config *config.Config
	logger logger.Logger

	db        *sql.DB
	limiter   *ratelimiter.RateLimiter
	scheduler *service.Scheduler

	// service surface for embedding callers
	Automations domain.AutomationService
	Enrollments domain.EnrollmentService
	Templates   *templates.InMemoryStore
}

// New builds an App from configuration
func New(cfg *config.Config) (*App, error) {
	log := logger.NewLoggerWithLevel(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.Database.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := database.InitializeDatabase(db); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	automationRepo := repository.NewAutomationRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	contactRepo := repository.NewContactRepository(db)

	limiter := ratelimiter.New()
	limiter.SetPolicy(service.RateLimitNamespace, cfg.Engine.RateLimitPerMinute, time.Minute)

	auditSink := service.NewLogAuditSink(log)
	notifier := service.NewLogNotificationService(log)

	automationService := service.NewAutomationService(automationRepo, log)
	enrollmentService := service.NewEnrollmentService(
		automationRepo, enrollmentRepo, executionRepo, contactRepo, auditSink, log)

	templateStore := templates.NewInMemoryStore()
	renderer := templates.NewLiquidRenderer(templateStore)
	sender := mailer.NewSMTPMailer(&mailer.Config{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUsername: cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromEmail:    cfg.SMTP.FromEmail,
		FromName:     cfg.SMTP.FromName,
	})

	evaluator := service.NewConditionEvaluator()
	handlers := map[domain.StepType]service.StepHandler{
		domain.StepTypeEmail:       service.NewEmailStepHandler(renderer, sender),
		domain.StepTypeWait:        service.NewWaitStepHandler(),
		domain.StepTypeCondition:   service.NewConditionStepHandler(evaluator),
		domain.StepTypeTagAdd:      service.NewTagAddStepHandler(contactRepo),
		domain.StepTypeTagRemove:   service.NewTagRemoveStepHandler(contactRepo),
		domain.StepTypeUpdateField: service.NewUpdateFieldStepHandler(contactRepo),
		domain.StepTypeWebhook:     service.NewWebhookStepHandler(service.NewHTTPWebhookClient()),
	}

	retry := service.NewRetryController(
		executionRepo, automationRepo, notifier, auditSink, log,
		cfg.Engine.MaxAttempts, cfg.Engine.RetryBackoff, cfg.Engine.RetryBackoffFallback)

	executor := service.NewStepExecutor(
		automationRepo, enrollmentRepo, executionRepo, contactRepo,
		enrollmentService, retry, limiter, handlers, log,
		10, cfg.Engine.RateLimitDeferral)

	discovery := service.NewTriggerDiscovery(
		automationRepo, contactRepo, enrollmentService, evaluator, log,
		cfg.Engine.DiscoveryBatchSize)

	scheduler := service.NewScheduler(executionRepo, executor, discovery, limiter, log,
		service.SchedulerConfig{
			Interval:           cfg.Engine.SchedulerInterval,
			BatchSize:          cfg.Engine.BatchSize,
			Concurrency:        cfg.Engine.WorkerConcurrency,
			StaleTimeout:       cfg.Engine.StaleProcessingTimeout,
			CompletedRetention: cfg.Engine.CompletedRetention,
			FailedRetention:    cfg.Engine.FailedRetention,
		})

	return &App{
		config:      cfg,
		logger:      log,
		db:          db,
		limiter:     limiter,
		scheduler:   scheduler,
		Automations: automationService,
		Enrollments: enrollmentService,
		Templates:   templateStore,
	}, nil
}

// Start launches the scheduler loop
func (a *App) Start(ctx context.Context) {
	a.logger.WithField("version", a.config.Version).Info("Starting dripkit engine")
	a.scheduler.Start(ctx)
}

// Shutdown stops the scheduler and releases resources
func (a *App) Shutdown() error {
	a.scheduler.Stop()
	a.limiter.Stop()
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.logger.Info("Engine shut down")
	return nil
}

// Logger exposes the app logger
func (a *App) Logger() logger.Logger {
	return a.logger
}
