package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"foodagent"
	"foodagent/agents"
	"foodagent/catalog"
)

const (
	ModeAuto   = "auto"
	ModeDirect = "direct"

	sampleSize = 6
)

const generalFallback = "👋 I'm your food ordering assistant. Ask me about budget-friendly products, nutrition, dietary requirements or meal planning. Here are a few products from our catalog to get you started."

// fallbackMessages answers a direct request when the chosen specialist has
// nothing to say about the query.
var fallbackMessages = map[agents.Type]string{
	agents.TypeBudget:       "💰 I'm the budget specialist. Ask me about cheap options, bulk savings or the cost per serving and I'll find the most cost-effective products. Here are some products to start with.",
	agents.TypeNutrition:    "🥦 I'm the nutrition specialist. Ask me about high-protein, low-fat, low-calorie or generally healthy products. Here are some products to start with.",
	agents.TypeDietary:      "🥗 I'm the dietary specialist. Tell me about allergies, gluten-free, dairy-free, vegan or vegetarian requirements and I'll filter the catalog for you. Here are some products to start with.",
	agents.TypeMealPlanning: "🍽️ I'm the meal planning specialist. Ask me for breakfast, lunch or dinner ideas, a weekly menu or a shopping list. Here are some products to start with.",
}

// Coordinator fans a request out to the specialist agents and merges their
// answers. It keeps no state between calls.
type Coordinator struct {
	catalog     foodagent.CatalogProvider
	specialists []agents.Agent
	logger      foodagent.DispatchLogger

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Coordinator)

// WithRand sets the source used to sample fallback products.
func WithRand(r *rand.Rand) Option {
	return func(c *Coordinator) { c.rnd = r }
}

func WithDispatchLogger(l foodagent.DispatchLogger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// New builds a coordinator over the four specialists, consulted in the order
// dietary, nutrition, budget, meal planning.
func New(catalog foodagent.CatalogProvider, opts ...Option) *Coordinator {
	c := &Coordinator{
		catalog: catalog,
		specialists: []agents.Agent{
			agents.NewDietary(catalog),
			agents.NewNutrition(catalog),
			agents.NewBudget(catalog),
			agents.NewMealPlanning(catalog),
		},
		logger: foodagent.NewNoOpDispatchLogger(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// outcome is what a dispatch produced, for logging and instrumentation.
type outcome struct {
	mode      string
	requested agents.Type
	responses []agents.Response
	fallback  bool
}

// Analyze consults every specialist. With no answers it returns a general
// fallback; with several it prepends a coordinator summary.
func (c *Coordinator) Analyze(ctx context.Context, req agents.Request) []agents.Response {
	return c.run(ctx, req, agents.TypeCoordinator).responses
}

// AnalyzeWithSpecificAgent consults one specialist. The coordinator type, or
// any type that names no specialist, runs the full auto mode.
func (c *Coordinator) AnalyzeWithSpecificAgent(ctx context.Context, req agents.Request, t agents.Type) []agents.Response {
	return c.run(ctx, req, t).responses
}

func (c *Coordinator) run(ctx context.Context, req agents.Request, t agents.Type) outcome {
	start := time.Now()

	var out outcome
	if a := c.specialist(t); a != nil {
		out = c.direct(req, a)
	} else {
		if t != agents.TypeCoordinator {
			slog.Warn("COORDINATOR: Unknown agent type, using auto mode", "agent", t)
		}
		out = c.auto(req)
	}

	c.logDispatch(req, out, time.Since(start))
	return out
}

func (c *Coordinator) auto(req agents.Request) outcome {
	out := outcome{mode: ModeAuto, requested: agents.TypeCoordinator}

	var found []agents.Response
	for _, a := range c.specialists {
		if res := a.Analyze(req); res != nil {
			found = append(found, *res)
		}
	}

	slog.Info("COORDINATOR: Specialists consulted", "query", req.UserQuery, "responses", len(found))

	switch len(found) {
	case 0:
		out.fallback = true
		out.responses = []agents.Response{{
			Agent:   agents.TypeCoordinator,
			Message: generalFallback,
			Data:    &agents.ResponseData{Products: c.sample()},
		}}
	case 1:
		out.responses = found
	default:
		summary := agents.Response{
			Agent:   agents.TypeCoordinator,
			Message: fmt.Sprintf("🤝 I consulted %d specialists for your request. Here is what each of them recommends:", len(found)),
		}
		out.responses = append([]agents.Response{summary}, found...)
	}
	return out
}

func (c *Coordinator) direct(req agents.Request, a agents.Agent) outcome {
	out := outcome{mode: ModeDirect, requested: a.Type()}
	if res := a.Analyze(req); res != nil {
		out.responses = []agents.Response{*res}
		return out
	}

	slog.Info("COORDINATOR: Specialist had no answer, using fallback", "agent", a.Type(), "query", req.UserQuery)
	out.fallback = true
	out.responses = []agents.Response{{
		Agent:   a.Type(),
		Message: fallbackMessages[a.Type()],
		Data:    &agents.ResponseData{Products: firstInStock(c.catalog, sampleSize)},
	}}
	return out
}

func (c *Coordinator) specialist(t agents.Type) agents.Agent {
	for _, a := range c.specialists {
		if a.Type() == t {
			return a
		}
	}
	return nil
}

// sample draws up to six in-stock products in random order.
func (c *Coordinator) sample() []catalog.Product {
	products := catalog.InStock(c.catalog.Products())
	c.mu.Lock()
	c.rnd.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})
	c.mu.Unlock()
	if len(products) > sampleSize {
		products = products[:sampleSize]
	}
	return products
}

func (c *Coordinator) logDispatch(req agents.Request, out outcome, d time.Duration) {
	if c.logger == nil {
		return
	}
	entry := foodagent.DispatchLog{
		Timestamp: time.Now(),
		Query:     req.UserQuery,
		Mode:      out.mode,
		Fallback:  out.fallback,
		Duration:  d,
	}
	if out.mode == ModeDirect {
		entry.RequestedAgent = string(out.requested)
	}
	for _, r := range out.responses {
		entry.Responders = append(entry.Responders, string(r.Agent))
		if r.Data != nil {
			entry.ProductCount += len(r.Data.Products)
			entry.MealCount += len(r.Data.Meals)
		}
	}
	if err := c.logger.LogDispatch(entry); err != nil {
		slog.Error("COORDINATOR: Failed to log dispatch", "error", err)
	}
}

func firstInStock(c foodagent.CatalogProvider, n int) []catalog.Product {
	products := catalog.InStock(c.Products())
	if len(products) > n {
		products = products[:n]
	}
	return products
}
