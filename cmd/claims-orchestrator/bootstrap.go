// cmd/claims-orchestrator/bootstrap.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dental-claims/internal/api"
	awsx "dental-claims/internal/common/aws"
	"dental-claims/internal/common/config"
	"dental-claims/internal/common/database"
	"dental-claims/internal/common/genai"
	httpx "dental-claims/internal/common/http"
	"dental-claims/internal/common/logger"
	"dental-claims/internal/common/observability"
	analyzesymptoms "dental-claims/internal/workers/ai-analysis/analyze-symptoms"
	pci "dental-claims/internal/workers/claims/process-claim-intent"
	extractexpense "dental-claims/internal/workers/documents/extract-expense"
	resolvesession "dental-claims/internal/workers/infrastructure/resolve-session"
	sendclaimnotification "dental-claims/internal/workers/notification/send-claim-notification"
	saveclaimrecord "dental-claims/internal/workers/persistence/save-claim-record"
	matchclinics "dental-claims/internal/workers/providers/match-clinics"

	"github.com/redis/go-redis/v9"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// app holds the clients shared by every pipeline run of the process.
type app struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	pg       *database.PostgresClient
	redis    *redis.Client
	store    *saveclaimrecord.PostgresStore
	pipeline *pci.Handler
	checks   map[string]api.ReadinessCheck
}

// newApp connects the collaborators. transport labels the active-runs gauge.
func newApp(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, transport string) (*app, error) {
	log := logger.NewZapAdapter(zapLog)
	a := &app{
		cfg:    cfg,
		zapLog: zapLog,
		log:    log,
		checks: map[string]api.ReadinessCheck{},
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("metrics exporter unavailable, run metrics disabled", zap.Error(err))
	}
	a.obs = obs

	err = retryWithBackoff(func() error {
		var err error
		a.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return a.pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")
	a.checks["postgres"] = a.pg.Ping

	var sessionStore resolvesession.AttributeStore
	if cfg.Database.Redis.Address != "" {
		a.redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return database.PingRedis(ctx, a.redis)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
		sessionStore = resolvesession.NewRedisStore(a.redis, time.Duration(cfg.Session.TTL)*time.Second)
		a.checks["redis"] = func(ctx context.Context) error { return database.PingRedis(ctx, a.redis) }
	}

	catalog, err := newCatalog(ctx, cfg, zapLog, a.checks)
	if err != nil {
		a.Close()
		return nil, err
	}

	awsCfg, err := awsx.LoadConfig(ctx, cfg.AWS.Region)
	if err != nil {
		a.Close()
		return nil, err
	}

	var emailer sendclaimnotification.SESService
	if cfg.AWS.SES.Enabled {
		emailer = awsx.NewSESClient(awsCfg)
	}
	notifier := sendclaimnotification.NewNotifier(&sendclaimnotification.Config{
		ClientTopicARN:   cfg.AWS.SNS.ClientTopicARN,
		ProviderTopicARN: cfg.AWS.SNS.ProviderTopicARN,
		EmailEnabled:     cfg.AWS.SES.Enabled,
		FromEmail:        cfg.AWS.SES.FromEmail,
	}, awsx.NewSNSClient(awsCfg), emailer, log)

	completer := genai.NewOpenAICompleter(genai.Options{
		BaseURL:     cfg.GenAI.BaseURL,
		APIKey:      cfg.GenAI.APIKey,
		Model:       cfg.GenAI.Model,
		MaxTokens:   cfg.GenAI.MaxTokens,
		Temperature: cfg.GenAI.Temperature,
		TopP:        cfg.GenAI.TopP,
		HTTPClient:  httpx.NewClient(config.GetDuration(cfg.GenAI.Timeout)).Standard(),
	})

	a.store = saveclaimrecord.NewPostgresStore(a.pg.DB, log)

	a.pipeline = pci.NewHandler(&pci.Config{
		Timeout:   config.GetDuration(cfg.Camunda.Timeout),
		Transport: transport,
	}, pci.Dependencies{
		Analyzer:      analyzesymptoms.NewHandler(completer, log),
		Extractor:     extractexpense.NewExtractor(awsx.NewTextractClient(awsCfg), cfg.AWS.Textract.DocumentsBucket, log),
		Clinics:       matchclinics.NewMatcher(catalog, log),
		Store:         a.store,
		Notifier:      notifier,
		Sessions:      resolvesession.NewResolver(sessionStore, log),
		Observability: a.obs,
	}, log)

	zapLog.Info("All external service clients initialized",
		zap.String("catalog", cfg.Catalog.Source),
		zap.Bool("sessionStore", sessionStore != nil),
		zap.Bool("email", cfg.AWS.SES.Enabled),
	)
	return a, nil
}

func newCatalog(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, checks map[string]api.ReadinessCheck) (matchclinics.Catalog, error) {
	if cfg.Catalog.Source != "elasticsearch" {
		return matchclinics.NewStaticCatalog(matchclinics.DefaultClinics()), nil
	}

	es, err := database.NewElasticsearch(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	err = retryWithBackoff(func() error {
		return database.PingElasticsearch(ctx, es)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("Elasticsearch connected successfully")
	checks["elasticsearch"] = func(ctx context.Context) error { return database.PingElasticsearch(ctx, es) }

	return matchclinics.NewElasticsearchCatalog(es, cfg.Catalog.Index, cfg.Catalog.MaxCandidates), nil
}

func (a *app) Close() {
	if a.obs != nil {
		if err := a.obs.Shutdown(context.Background()); err != nil {
			a.zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
}

func openDB(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*sql.DB, error) {
	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	return pg.DB, nil
}
