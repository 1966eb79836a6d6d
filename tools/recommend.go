package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"foodagent"
	"foodagent/agents"
	"foodagent/order"
)

// Recommender dispatches a request to the specialist agents.
type Recommender interface {
	Analyze(ctx context.Context, req agents.Request) []agents.Response
	AnalyzeWithSpecificAgent(ctx context.Context, req agents.Request, t agents.Type) []agents.Response
}

// OrderHistory lists the organization's previous orders.
type OrderHistory interface {
	History(ctx context.Context) ([]order.Order, error)
}

type Recommend struct {
	recommender Recommender
	profiles    foodagent.ProfileProvider
	orders      OrderHistory
}

// NewRecommend builds the tool. orders may be nil.
func NewRecommend(r Recommender, profiles foodagent.ProfileProvider, orders OrderHistory) *Recommend {
	return &Recommend{recommender: r, profiles: profiles, orders: orders}
}

func (t *Recommend) Name() string  { return "recommend" }
func (t *Recommend) Title() string { return "Recommend Products" }
func (t *Recommend) Description() string {
	return "Asks the specialist agents (budget, nutrition, dietary, meal-planning) for product and meal recommendations. Leave agent empty to let the coordinator choose."
}

func (t *Recommend) InputSchema() *jsonschema.Schema {
	minBudget, minServings := 0.0, 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":    {Type: "string"},
			"agent":    {Type: "string"},
			"budget":   {Type: "number", Minimum: &minBudget},
			"servings": {Type: "integer", Minimum: &minServings},
			"dietary_restrictions": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"query"},
	}
}

func (t *Recommend) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"responses": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"agent":   {Type: "string"},
						"message": {Type: "string"},
						"data":    {Type: "object"},
					},
					Required: []string{"agent", "message"},
				},
			},
		},
		Required: []string{"responses"},
	}
}

func (t *Recommend) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	query := strings.TrimSpace(stringArg(input, "query"))
	if query == "" {
		return nil, fmt.Errorf("recommend: query is required")
	}

	prof, err := t.profiles.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	var history []order.Order
	if t.orders != nil {
		if history, err = t.orders.History(ctx); err != nil {
			return nil, fmt.Errorf("recommend: load order history: %w", err)
		}
	}

	req := agents.Request{
		UserQuery:           query,
		Profile:             prof,
		OrderHistory:        history,
		DietaryRestrictions: stringsArg(input, "dietary_restrictions"),
	}
	if v, ok := numberArg(input, "budget"); ok {
		req.Budget = &v
	}
	if v, ok := numberArg(input, "servings"); ok && v >= 1 {
		req.Servings = int(v)
	}

	var responses []agents.Response
	if name := stringArg(input, "agent"); name != "" {
		agentType, ok := agents.ParseType(name)
		if !ok {
			return nil, fmt.Errorf("recommend: unknown agent %q", name)
		}
		responses = t.recommender.AnalyzeWithSpecificAgent(ctx, req, agentType)
	} else {
		responses = t.recommender.Analyze(ctx, req)
	}

	return toMap(struct {
		Responses []agents.Response `json:"responses"`
	}{Responses: responses})
}
