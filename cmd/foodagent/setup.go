package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"foodagent"
	"foodagent/assistant"
	"foodagent/assistant/bedrock"
	"foodagent/assistant/mock"
	"foodagent/assistant/ollama"
	"foodagent/catalog"
	"foodagent/coordinator"
	"foodagent/mealplan"
	"foodagent/order"
	"foodagent/profile"
	"foodagent/slack"
	"foodagent/store"
	"foodagent/tools"
)

// app holds the wired services shared by every subcommand.
type app struct {
	catalog  *catalog.Catalog
	profiles *profile.Repository
	cart     *order.Cart
	planner  *mealplan.Planner
	session  *assistant.Session
	registry *tools.Registry

	cleanup []func(context.Context) error
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, a.cleanup[i](ctx))
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context) (*app, error) {
	var modelConfig foodagent.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		return nil, fmt.Errorf("decode model config: %w", err)
	}
	var agentConfig foodagent.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		return nil, fmt.Errorf("decode agent config: %w", err)
	}

	a := &app{}
	fail := func(err error) (*app, error) {
		return nil, errors.Join(err, a.Close(ctx))
	}

	st, catalogSource, closeStore, err := openStores(ctx, agentConfig)
	if err != nil {
		return fail(err)
	}
	a.cleanup = append(a.cleanup, closeStore)

	a.catalog, err = catalog.Load(ctx, catalogSource, agentConfig.CatalogKey)
	if err != nil {
		return fail(err)
	}
	slog.Info("SETUP: Catalog loaded",
		"products", len(a.catalog.Products()),
		"in_stock", len(a.catalog.InStockProducts()),
		"meals", len(a.catalog.Meals()))

	dispatchLogger, closeLog, err := newDispatchLogger(agentConfig)
	if err != nil {
		return fail(err)
	}
	a.cleanup = append(a.cleanup, closeLog)

	opts := []coordinator.Option{coordinator.WithDispatchLogger(dispatchLogger)}
	if agentConfig.RandomSeed != 0 {
		opts = append(opts, coordinator.WithRand(rand.New(rand.NewSource(agentConfig.RandomSeed))))
	}
	coord := coordinator.New(a.catalog, opts...)

	var recommender interface {
		assistant.Recommender
		tools.Recommender
	} = coord
	if agentConfig.OtelEnabled {
		tracerProvider, meterProvider, otelShutdown, err := foodagent.InitOtel(ctx)
		if err != nil {
			return fail(fmt.Errorf("initialize OpenTelemetry: %w", err))
		}
		a.cleanup = append(a.cleanup, otelShutdown)
		recommender = coordinator.NewInstrumentedCoordinator(coord,
			tracerProvider.Tracer(foodagent.TracerNameCoordinator),
			meterProvider.Meter(foodagent.TracerNameCoordinator))
		slog.Info("SETUP: OpenTelemetry enabled")
	}

	a.profiles = profile.NewRepository(st)

	var cartOpts []order.CartOption
	if agentConfig.SlackWebhookURL != "" {
		cartOpts = append(cartOpts, order.WithSlack(slack.NewClient(agentConfig.SlackWebhookURL, http.DefaultClient), agentConfig.SlackChannel))
	}
	a.cart = order.NewCart(st, a.catalog, a.profiles, cartOpts...)
	a.planner = mealplan.NewPlanner(st, a.catalog, a.profiles)

	sessionOpts := []assistant.Option{assistant.WithThinkingDelay(agentConfig.ThinkingDelay)}
	completer, err := newCompleter(ctx, agentConfig, modelConfig)
	if err != nil {
		return fail(err)
	}
	if completer != nil {
		sessionOpts = append(sessionOpts, assistant.WithCompleter(completer))
	}
	a.session = assistant.NewSession(recommender, a.profiles, a.cart, st, sessionOpts...)

	a.registry, err = tools.NewRegistry(tools.Deps{
		Catalog:     a.catalog,
		Profiles:    a.profiles,
		Recommender: recommender,
		Orders:      a.cart,
		Plans:       a.planner,
	})
	if err != nil {
		return fail(fmt.Errorf("create tool registry: %w", err))
	}

	return a, nil
}

// openStores returns the state store and the store the catalog is read from.
// The catalog lives next to the state, except for SQLite where it stays in
// DATA_DIR.
func openStores(ctx context.Context, cfg foodagent.AgentConfig) (store.Store, catalog.Loader, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch strings.ToLower(cfg.StoreDriver) {
	case "file", "":
		fs := store.NewFileStore(cfg.DataDir)
		slog.Info("SETUP: Using file store", "dir", cfg.DataDir)
		return fs, fs, noop, nil
	case "memory":
		slog.Info("SETUP: Using in-memory store; state is lost on exit")
		return store.NewMemoryStore(), store.NewFileStore(cfg.DataDir), noop, nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		db, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("SETUP: Using SQLite store", "path", cfg.SQLitePath)
		return db, store.NewFileStore(cfg.DataDir), func(context.Context) error { return db.Close() }, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, nil, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		s := store.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix)
		slog.Info("SETUP: Using S3 store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return s, s, noop, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func newDispatchLogger(cfg foodagent.AgentConfig) (foodagent.DispatchLogger, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch strings.ToLower(cfg.DispatchLog) {
	case "none", "":
		return foodagent.NewNoOpDispatchLogger(), noop, nil
	case "stdout":
		return foodagent.NewStdoutDispatchLogger(), noop, nil
	case "file":
		logFilePath := foodagent.NewDispatchLogFilePath(cfg.DataDir)
		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open dispatch log: %w", err)
		}
		logger := foodagent.NewFileDispatchLogger(logFile)
		return logger, func(context.Context) error {
			return errors.Join(logger.Flush(), logFile.Close())
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown DISPATCH_LOG %q", cfg.DispatchLog)
}

func newCompleter(ctx context.Context, cfg foodagent.AgentConfig, model foodagent.ModelConfig) (assistant.Completer, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "none", "":
		return nil, nil
	case "mock":
		return mock.NewCompleter(), nil
	case "ollama":
		client, err := ollama.NewClient(ollama.ClientOpts{
			BaseEndpoint: cfg.BaseOllamaEndpoint,
			ModelID:      model.ModelID,
			HTTPClient:   http.DefaultClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		brc, err := newBedrockRuntimeClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create Bedrock client: %w", err)
		}
		return bedrock.NewLLMClient(brc, bedrock.LLMOptions{
			ModelID:     model.ModelID,
			MaxTokens:   model.MaxTokens,
			Temperature: model.Temperature,
			TopP:        model.TopP,
		}), nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
}

func newBedrockRuntimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}
