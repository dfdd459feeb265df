package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ContextSearcher 提供个性化资料检索（个人档案索引）。
type ContextSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	WritingStyle() string
}

// Agent 负责根据用户请求生成各类草稿。
type Agent struct {
	llm               LLMClient
	profile           ContextSearcher
	fallbackRecipient string
	logger            *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithProfile enables personalised post drafts.
func WithProfile(s ContextSearcher) Option {
	return func(a *Agent) { a.profile = s }
}

// WithFallbackRecipient overrides DefaultRecipient.
func WithFallbackRecipient(addr string) Option {
	return func(a *Agent) {
		if addr != "" {
			a.fallbackRecipient = addr
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAgent(llm LLMClient, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, fallbackRecipient: DefaultRecipient, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// complete calls the model once and, on ErrInputTooLarge only, once more
// with the compact prompt.
func (a *Agent) complete(ctx context.Context, kind Kind, full, compact Prompt) (string, error) {
	raw, err := a.llm.Complete(ctx, full)
	if err == nil {
		return raw, nil
	}
	if !errors.Is(err, ErrInputTooLarge) {
		return "", fmt.Errorf("generate %s draft: %w", kind, err)
	}
	a.logger.Warn("generator: input too large, retrying with compact prompt", "kind", kind)
	raw, err = a.llm.Complete(ctx, compact)
	if err != nil {
		return "", fmt.Errorf("generate %s draft (compact): %w", kind, err)
	}
	return raw, nil
}

// GenerateEmail produces a reviewable email draft. An empty query yields a
// canned draft asking for details without calling the model.
func (a *Agent) GenerateEmail(ctx context.Context, query string) (EmailDraft, error) {
	if strings.TrimSpace(query) == "" {
		return EmailDraft{
			To:      a.fallbackRecipient,
			Subject: DefaultSubject,
			Body:    "Please provide the subject and any additional details (date, your name, your company, etc.) so I can help you with the email.",
		}, nil
	}
	raw, err := a.complete(ctx, KindEmail,
		BuildEmailPrompt(query, a.fallbackRecipient),
		BuildEmailCompactPrompt(query, a.fallbackRecipient))
	if err != nil {
		return EmailDraft{}, err
	}
	draft := ParseEmailDraft(raw, query, a.fallbackRecipient)
	a.logger.Debug("generator: email draft ready", "to", draft.To, "subject", draft.Subject)
	return draft, nil
}

// GenerateEvent produces calendar fields for the query.
func (a *Agent) GenerateEvent(ctx context.Context, query string) (EventDraft, error) {
	raw, err := a.complete(ctx, KindEvent, BuildEventPrompt(query), BuildEventCompactPrompt(query))
	if err != nil {
		return EventDraft{}, err
	}
	ev := ParseEventDraft(raw, query)
	a.logger.Debug("generator: event draft ready", "summary", ev.Summary, "start", ev.StartDateTime)
	return ev, nil
}

// GeneratePost 生成个性化 LinkedIn 帖子。
func (a *Agent) GeneratePost(ctx context.Context, topic string) (PostDraft, error) {
	pc := a.postContext(ctx, topic)
	raw, err := a.complete(ctx, KindPost, BuildPostPrompt(topic, pc), BuildPostCompactPrompt(topic))
	if err != nil {
		return PostDraft{}, err
	}
	content := CleanPost(raw)
	if content == "" {
		return PostDraft{}, fmt.Errorf("generate %s draft: %w", KindPost, ErrEmptyResponse)
	}
	return PostDraft{Topic: topic, Content: content, ContextDocs: len(pc.Snippets)}, nil
}

// RevisePost applies reviewer feedback to an existing post draft.
func (a *Agent) RevisePost(ctx context.Context, topic string, prev PostDraft, comment string, history []Turn) (PostDraft, error) {
	raw, err := a.llm.Complete(ctx, BuildRevisionPrompt(topic, prev, comment, history))
	if err != nil {
		return PostDraft{}, fmt.Errorf("revise post: %w", err)
	}
	content := CleanPost(raw)
	if content == "" {
		return PostDraft{}, fmt.Errorf("revise post: %w", ErrEmptyResponse)
	}
	return PostDraft{Topic: topic, Content: content, ContextDocs: prev.ContextDocs}, nil
}

func (a *Agent) postContext(ctx context.Context, topic string) PostContext {
	if a.profile == nil {
		return PostContext{}
	}
	snippets, err := a.profile.Search(ctx, topic, 5)
	if err != nil {
		// 检索失败不影响生成，只是不做个性化。
		a.logger.Warn("generator: profile search failed", "error", err)
		snippets = nil
	}
	return PostContext{Snippets: snippets, WritingStyle: a.profile.WritingStyle()}
}
