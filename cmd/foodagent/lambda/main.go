package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"foodagent"
	"foodagent/catalog"
	"foodagent/coordinator"
	"foodagent/mealplan"
	"foodagent/order"
	"foodagent/profile"
	"foodagent/store"
	"foodagent/tools"
)

// Params selects a tool and its input. A bare query is shorthand for the
// recommend tool.
type Params struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
	Query string         `json:"query"`
	Agent string         `json:"agent"`
}

type Results struct {
	Tool   string         `json:"tool"`
	Output map[string]any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var agentConfig foodagent.AgentConfig
		if err := envdecode.Decode(&agentConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		if agentConfig.S3Bucket == "" {
			return Results{}, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		st := store.NewS3Store(s3.NewFromConfig(awsCfg), agentConfig.S3Bucket, agentConfig.S3Prefix)

		cat, err := catalog.Load(ctx, st, agentConfig.CatalogKey)
		if err != nil {
			slog.Error("SETUP: Failed to load catalog from S3", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: Catalog loaded from S3", "products", len(cat.Products()), "meals", len(cat.Meals()))

		profiles := profile.NewRepository(st)
		coord := coordinator.New(cat, coordinator.WithDispatchLogger(foodagent.NewStdoutDispatchLogger()))

		var recommender tools.Recommender = coord
		if agentConfig.OtelEnabled {
			tracerProvider, meterProvider, otelShutdown, err := foodagent.InitOtel(ctx)
			if err != nil {
				slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
				return Results{}, err
			}
			defer func() {
				if err := otelShutdown(ctx); err != nil {
					slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
				}
			}()
			recommender = coordinator.NewInstrumentedCoordinator(coord,
				tracerProvider.Tracer(foodagent.TracerNameCoordinator),
				meterProvider.Meter(foodagent.TracerNameCoordinator))
		}

		registry, err := tools.NewRegistry(tools.Deps{
			Catalog:     cat,
			Profiles:    profiles,
			Recommender: recommender,
			Orders:      order.NewCart(st, cat, profiles),
			Plans:       mealplan.NewPlanner(st, cat, profiles),
		})
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}

		name, input := params.Tool, params.Input
		if name == "" {
			name = "recommend"
			input = map[string]any{"query": params.Query, "agent": params.Agent}
		}
		if input == nil {
			input = map[string]any{}
		}

		tool, err := registry.GetTool(name)
		if err != nil {
			return Results{}, err
		}
		output, err := tool.Run(ctx, input)
		if err != nil {
			slog.Error("RESULT: Error running tool", "tool", name, "error", err)
			return Results{}, err
		}

		return Results{Tool: name, Output: output}, nil
	}

	lambda.Start(fn)
}
