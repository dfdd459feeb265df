// Package workflow routes a query to its handler and sequences drafting and
// execution for each intent.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"personal_content_agent/action"
	"personal_content_agent/analytics"
	"personal_content_agent/generator"
	"personal_content_agent/router"
)

// Classifier picks the intent for a query.
type Classifier interface {
	Classify(ctx context.Context, query string) router.Decision
}

// Drafter produces reviewable drafts.
type Drafter interface {
	GenerateEmail(ctx context.Context, query string) (generator.EmailDraft, error)
	GenerateEvent(ctx context.Context, query string) (generator.EventDraft, error)
	GeneratePost(ctx context.Context, topic string) (generator.PostDraft, error)
}

// Actions performs the irreversible steps.
type Actions interface {
	SendEmail(ctx context.Context, d generator.EmailDraft) action.Result
	CreateEvent(ctx context.Context, d generator.EventDraft) action.Result
	PublishPost(ctx context.Context, text string) action.Result
}

type ProfileAnalytics interface {
	AnalyzeProfile(ctx context.Context, file, question string) (analytics.ProfileReport, error)
}

type PostAnalytics interface {
	AnalyzePost(ctx context.Context, query string) (string, error)
}

// Deps are the orchestrator's collaborators. The analytics ones are
// optional; without them the matching intents report "not configured".
type Deps struct {
	Router  Classifier
	Drafter Drafter
	Actions Actions
	Profile ProfileAnalytics
	Post    PostAnalytics
	Logger  *slog.Logger
}

// Orchestrator holds no per-run state; concurrent Run calls are safe as long
// as the collaborators are.
type Orchestrator struct {
	router  Classifier
	drafter Drafter
	actions Actions
	profile ProfileAnalytics
	post    PostAnalytics
	logger  *slog.Logger
}

func New(d Deps) (*Orchestrator, error) {
	if d.Router == nil || d.Drafter == nil || d.Actions == nil {
		return nil, errors.New("workflow: router, drafter and actions are required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Orchestrator{
		router:  d.Router,
		drafter: d.Drafter,
		actions: d.Actions,
		profile: d.Profile,
		post:    d.Post,
		logger:  d.Logger,
	}, nil
}

type handler func(o *Orchestrator, ctx context.Context, query, filePath string) any

var handlers = map[router.Intent]handler{
	router.ContentCreation:  (*Orchestrator).handleContent,
	router.ProfileAnalytics: (*Orchestrator).handleProfileAnalytics,
	router.PostAnalytics:    (*Orchestrator).handlePostAnalytics,
	router.Email:            (*Orchestrator).handleEmail,
	router.Calendar:         (*Orchestrator).handleCalendar,
	router.Compound:         (*Orchestrator).handleCompound,
}

// Run classifies query and dispatches it. It never panics and never returns
// an error; failures are carried in the output.
func (o *Orchestrator) Run(ctx context.Context, query, filePath string) Envelope {
	dec := o.router.Classify(ctx, query)
	routesTotal.WithLabelValues(string(dec.Intent), string(dec.Source)).Inc()
	o.logger.Info("workflow: routed", "intent", dec.Intent, "source", dec.Source)

	env := Envelope{Route: dec.Intent}
	h, ok := handlers[dec.Intent]
	if !ok {
		env.Output = failed(fmt.Sprintf("no handler for intent %q", dec.Intent))
		return env
	}
	env.Output = o.safely(ctx, dec.Intent, func() any { return h(o, ctx, query, filePath) })
	return env
}

func (o *Orchestrator) safely(ctx context.Context, intent router.Intent, fn func() any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "workflow: handler panicked", "intent", intent, "panic", r, "stack", string(debug.Stack()))
			out = failed(fmt.Sprintf("internal error: %v", r))
		}
	}()
	return fn()
}

func (o *Orchestrator) handleContent(ctx context.Context, query, _ string) any {
	post, err := o.drafter.GeneratePost(ctx, query)
	if err != nil {
		return failed(err.Error())
	}
	return ContentOutput{Content: post.Content, PersonalContext: post.ContextDocs}
}

func (o *Orchestrator) handleProfileAnalytics(ctx context.Context, query, filePath string) any {
	if msg, ok := checkProfileInput(filePath); !ok {
		o.reject(router.ProfileAnalytics, msg)
		return AnalyticsOutput{Success: false, Error: msg}
	}
	if o.profile == nil {
		return AnalyticsOutput{Success: false, Error: "profile analytics is not configured"}
	}
	rep, err := o.profile.AnalyzeProfile(ctx, filePath, query)
	if err != nil {
		return AnalyticsOutput{Success: false, Error: fmt.Sprintf("Profile analysis failed: %v", err)}
	}
	return AnalyticsOutput{Success: true, Analysis: rep.Analysis, AnalysisType: rep.AnalysisType}
}

func (o *Orchestrator) handlePostAnalytics(ctx context.Context, query, _ string) any {
	if msg, ok := checkPostQuery(query); !ok {
		o.reject(router.PostAnalytics, msg)
		return AnalyticsOutput{Success: false, Error: msg}
	}
	if o.post == nil {
		return AnalyticsOutput{Success: false, Error: "post analytics is not configured"}
	}
	analysis, err := o.post.AnalyzePost(ctx, query)
	if err != nil {
		return AnalyticsOutput{Success: false, Error: fmt.Sprintf("Post analysis failed: %v", err)}
	}
	return AnalyticsOutput{Success: true, Analysis: analysis}
}

func (o *Orchestrator) reject(intent router.Intent, msg string) {
	guardRejectionsTotal.WithLabelValues(string(intent)).Inc()
	o.logger.Info("workflow: guard rejected query", "intent", intent, "reason", msg)
}

// handleEmail only drafts; sending waits for an explicit approval.
func (o *Orchestrator) handleEmail(ctx context.Context, query, _ string) any {
	draft, err := o.drafter.GenerateEmail(ctx, query)
	if err != nil {
		return failed(err.Error())
	}
	return EmailOutput{Draft: draft, Status: StatusDraftGenerated}
}

// handleCalendar drafts and creates the event in one go.
func (o *Orchestrator) handleCalendar(ctx context.Context, query, _ string) any {
	ev, err := o.drafter.GenerateEvent(ctx, query)
	if err != nil {
		return CalendarOutput{Result: failed(err.Error())}
	}
	res := o.CreateEvent(ctx, ev)
	return CalendarOutput{Event: &ev, Result: res}
}

// SendDraft sends a reviewed email draft.
func (o *Orchestrator) SendDraft(ctx context.Context, d generator.EmailDraft) action.Result {
	res := o.actions.SendEmail(ctx, d)
	o.recordAction("email", res)
	return res
}

// CreateEvent creates a (possibly edited) event draft.
func (o *Orchestrator) CreateEvent(ctx context.Context, d generator.EventDraft) action.Result {
	res := o.actions.CreateEvent(ctx, d)
	o.recordAction("calendar", res)
	return res
}

// PublishPost publishes reviewed post text.
func (o *Orchestrator) PublishPost(ctx context.Context, text string) action.Result {
	res := o.actions.PublishPost(ctx, text)
	o.recordAction("post", res)
	return res
}

func (o *Orchestrator) recordAction(kind string, res action.Result) {
	outcome := res.Outcome()
	actionsTotal.WithLabelValues(kind, string(outcome)).Inc()
	if outcome == action.OutcomeFailure {
		o.logger.Warn("workflow: action failed", "kind", kind, "error", res.Error)
		return
	}
	o.logger.Info("workflow: action done", "kind", kind, "outcome", outcome)
}
