package coordinator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"foodagent/agents"
)

// InstrumentedCoordinator wraps a Coordinator with spans and metrics.
type InstrumentedCoordinator struct {
	*Coordinator
	tracer trace.Tracer

	requests  metric.Int64Counter
	responses metric.Int64Counter
	fallbacks metric.Int64Counter
	products  metric.Int64Histogram
	duration  metric.Float64Histogram
}

func NewInstrumentedCoordinator(c *Coordinator, tracer trace.Tracer, meter metric.Meter) *InstrumentedCoordinator {
	ic := &InstrumentedCoordinator{Coordinator: c, tracer: tracer}

	ic.requests, _ = meter.Int64Counter("coordinator_requests_total",
		metric.WithDescription("Total number of recommendation requests dispatched"))
	ic.responses, _ = meter.Int64Counter("agent_responses_total",
		metric.WithDescription("Total number of responses returned, by agent"))
	ic.fallbacks, _ = meter.Int64Counter("coordinator_fallbacks_total",
		metric.WithDescription("Total number of requests answered by a fallback response"))
	ic.products, _ = meter.Int64Histogram("recommended_products_count",
		metric.WithDescription("Number of products recommended per request"))
	ic.duration, _ = meter.Float64Histogram("coordinator_dispatch_duration_seconds",
		metric.WithDescription("Duration of a coordinator dispatch in seconds"))

	return ic
}

func (ic *InstrumentedCoordinator) Analyze(ctx context.Context, req agents.Request) []agents.Response {
	return ic.instrument(ctx, req, agents.TypeCoordinator)
}

func (ic *InstrumentedCoordinator) AnalyzeWithSpecificAgent(ctx context.Context, req agents.Request, t agents.Type) []agents.Response {
	return ic.instrument(ctx, req, t)
}

func (ic *InstrumentedCoordinator) instrument(ctx context.Context, req agents.Request, t agents.Type) []agents.Response {
	ctx, span := ic.tracer.Start(ctx, "InstrumentedCoordinator.Dispatch", trace.WithAttributes(
		attribute.String("agent.requested", string(t)),
		attribute.Int("query.length", len(req.UserQuery)),
		attribute.Bool("profile.present", req.Profile != nil),
		attribute.Int("order_history.count", len(req.OrderHistory)),
	))
	defer span.End()

	start := time.Now()
	out := ic.run(ctx, req, t)
	elapsed := time.Since(start)

	modeAttr := attribute.String("mode", out.mode)
	ic.requests.Add(ctx, 1, metric.WithAttributes(modeAttr))
	ic.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(modeAttr))
	if out.fallback {
		ic.fallbacks.Add(ctx, 1, metric.WithAttributes(modeAttr))
	}

	var productCount int
	responders := make([]string, 0, len(out.responses))
	for _, r := range out.responses {
		responders = append(responders, string(r.Agent))
		ic.responses.Add(ctx, 1, metric.WithAttributes(attribute.String("agent", string(r.Agent))))
		if r.Data != nil {
			productCount += len(r.Data.Products)
		}
	}
	ic.products.Record(ctx, int64(productCount), metric.WithAttributes(modeAttr))

	span.SetAttributes(
		attribute.String("mode", out.mode),
		attribute.Bool("fallback", out.fallback),
		attribute.StringSlice("responders", responders),
		attribute.Int("products.count", productCount),
	)
	span.AddEvent("Dispatch complete", trace.WithAttributes(
		attribute.Float64("dispatch_duration_seconds", elapsed.Seconds()),
	))

	slog.Info("COORDINATOR: Dispatch complete",
		"mode", out.mode,
		"responders", responders,
		"fallback", out.fallback,
		"duration_ms", elapsed.Milliseconds(),
	)

	return out.responses
}
