// Package assistant runs the chat flow around the coordinator: it gathers the
// organization's context, dispatches the question, optionally narrates the
// answers through a language model, and keeps the chat history.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"foodagent"
	"foodagent/agents"
	"foodagent/order"
	"foodagent/store"
)

// HistoryKey is where the chat history is persisted.
const HistoryKey = "chat-history"

var ErrEmptyQuestion = errors.New("question is empty")

// Recommender is the coordinator surface the session dispatches to.
type Recommender interface {
	Analyze(ctx context.Context, req agents.Request) []agents.Response
	AnalyzeWithSpecificAgent(ctx context.Context, req agents.Request, t agents.Type) []agents.Response
}

// Completer turns a system prompt and a user prompt into model text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// OrderHistory lists previous orders. order.Cart implements it.
type OrderHistory interface {
	History(ctx context.Context) ([]order.Order, error)
}

// Question is one user message. An empty Agent means auto mode.
type Question struct {
	Text                string
	Agent               agents.Type
	Budget              *float64
	Servings            int
	DietaryRestrictions []string
}

// Reply is what the session answers with. Summary is empty when no completer
// is configured or it failed.
type Reply struct {
	Responses []agents.Response `json:"responses"`
	Summary   string            `json:"summary,omitempty"`
}

// Message is one chat history entry.
type Message struct {
	Role      string               `json:"role"`
	Agent     agents.Type          `json:"agent,omitempty"`
	Text      string               `json:"text"`
	Data      *agents.ResponseData `json:"data,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

type Session struct {
	recommender Recommender
	profiles    foodagent.ProfileProvider
	orders      OrderHistory
	store       store.Store
	completer   Completer
	delay       time.Duration
	now         func() time.Time
	tracer      trace.Tracer
}

type Option func(*Session)

// WithCompleter enables the narrative summary.
func WithCompleter(c Completer) Option {
	return func(s *Session) { s.completer = c }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) { s.tracer = t }
}

// WithThinkingDelay pauses before each dispatch.
func WithThinkingDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

func NewSession(r Recommender, profiles foodagent.ProfileProvider, orders OrderHistory, st store.Store, opts ...Option) *Session {
	s := &Session{
		recommender: r,
		profiles:    profiles,
		orders:      orders,
		store:       st,
		now:         time.Now,
		tracer:      otel.Tracer(foodagent.TracerNameAssistant),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers q and records the exchange in the chat history.
func (s *Session) Ask(ctx context.Context, q Question) (Reply, error) {
	ctx, span := s.tracer.Start(ctx, "Session.Ask", trace.WithAttributes(
		attribute.String("agent.requested", string(q.Agent)),
	))
	defer span.End()

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Reply{}, ErrEmptyQuestion
	}

	req, err := s.request(ctx, text, q)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build request")
		span.RecordError(err)
		return Reply{}, err
	}

	slog.Info("ASSISTANT: Thinking", "query", text, "agent", q.Agent, "delay", s.delay)
	if err := s.think(ctx); err != nil {
		span.SetStatus(codes.Error, "thinking interrupted")
		span.RecordError(err)
		return Reply{}, err
	}

	var responses []agents.Response
	if q.Agent == "" || q.Agent == agents.TypeCoordinator {
		responses = s.recommender.Analyze(ctx, req)
	} else {
		responses = s.recommender.AnalyzeWithSpecificAgent(ctx, req, q.Agent)
	}
	reply := Reply{Responses: responses}
	span.SetAttributes(attribute.Int("responses.count", len(responses)))

	if s.completer != nil {
		summary, err := s.completer.Complete(ctx, systemPrompt, buildPrompt(text, req, responses))
		if err != nil {
			slog.Warn("ASSISTANT: Narrative summary failed, continuing without it", "error", err)
			span.AddEvent("summary failed", trace.WithAttributes(attribute.String("error", err.Error())))
		} else {
			reply.Summary = strings.TrimSpace(summary)
		}
	}

	if err := s.record(ctx, text, reply); err != nil {
		span.SetStatus(codes.Error, "failed to save chat history")
		span.RecordError(err)
		return reply, err
	}

	slog.Info("ASSISTANT: Answered", "responses", len(responses), "summary", reply.Summary != "")
	return reply, nil
}

func (s *Session) request(ctx context.Context, text string, q Question) (agents.Request, error) {
	prof, err := s.profiles.Profile(ctx)
	if err != nil {
		return agents.Request{}, fmt.Errorf("load profile: %w", err)
	}
	var history []order.Order
	if s.orders != nil {
		if history, err = s.orders.History(ctx); err != nil {
			return agents.Request{}, fmt.Errorf("load order history: %w", err)
		}
	}
	return agents.Request{
		UserQuery:           text,
		Profile:             prof,
		OrderHistory:        history,
		Budget:              q.Budget,
		Servings:            q.Servings,
		DietaryRestrictions: q.DietaryRestrictions,
	}, nil
}

func (s *Session) think(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) record(ctx context.Context, text string, reply Reply) error {
	history, err := s.History(ctx)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	history = append(history, Message{Role: "user", Text: text, Timestamp: now})
	for _, r := range reply.Responses {
		history = append(history, Message{Role: "assistant", Agent: r.Agent, Text: r.Message, Data: r.Data, Timestamp: now})
	}
	if reply.Summary != "" {
		history = append(history, Message{Role: "assistant", Agent: agents.TypeCoordinator, Text: reply.Summary, Timestamp: now})
	}
	if err := store.SetJSON(ctx, s.store, HistoryKey, history); err != nil {
		return fmt.Errorf("save chat history: %w", err)
	}
	return nil
}

// History returns the chat so far, oldest first.
func (s *Session) History(ctx context.Context) ([]Message, error) {
	history, err := store.GetJSON(ctx, s.store, HistoryKey, []Message{})
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return history, nil
}

// Reset clears the chat history.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.store.Delete(ctx, HistoryKey); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("reset chat history: %w", err)
	}
	return nil
}
