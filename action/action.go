// Package action performs the irreversible steps once a draft is approved.
package action

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"personal_content_agent/calendar"
	"personal_content_agent/generator"
	"personal_content_agent/idempotency"
	"personal_content_agent/mailer"
	"personal_content_agent/publisher"
)

const (
	MsgEmailSent        = "Email sent!"
	MsgEmailAlreadySent = "Email already sent!"
	MsgEventCreated     = "Event created!"
	MsgPostPublished    = "Post published!"
)

// Outcome 用于统计，区分成功、重复和失败。
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailure   Outcome = "failure"
)

// Result is the value every action returns; failures are never Go errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      string `json:"id,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Outcome classifies r.
func (r Result) Outcome() Outcome {
	switch {
	case r.Success:
		return OutcomeSuccess
	case r.Message == MsgEmailAlreadySent:
		return OutcomeDuplicate
	default:
		return OutcomeFailure
	}
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

type EventCreator interface {
	Create(ctx context.Context, d generator.EventDraft) (calendar.Created, error)
}

type PostPublisher interface {
	Publish(ctx context.Context, text string) (string, error)
}

var (
	errNoMail      = errors.New("email service is not configured")
	errNoCalendar  = errors.New("calendar service is not configured")
	errNoPublisher = errors.New("post publisher is not configured")
)

// Executor wires the collaborators. Any of them may be nil, in which case
// the matching action fails with a "not configured" result.
type Executor struct {
	Mail      MailSender
	Calendar  EventCreator
	Publisher PostPublisher
	Keys      idempotency.Store
	Logger    *slog.Logger
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// SendEmail sends d at most once per (recipient, subject). The key is
// reserved before the send and released again if the send fails, so a
// failed attempt can be retried.
func (e *Executor) SendEmail(ctx context.Context, d generator.EmailDraft) Result {
	log := e.logger()
	if e.Mail == nil {
		return failure(errNoMail)
	}
	if strings.TrimSpace(d.To) == "" {
		return failure(errors.New("email draft has no recipient"))
	}
	// 在占用幂等键之前校验，非法地址不会写入 key 集合。
	if err := mailer.ValidateAddress(d.To); err != nil {
		return failure(err)
	}
	keys := e.Keys
	if keys == nil {
		return failure(errors.New("idempotency store is not configured"))
	}

	key := idempotency.EmailKey(d.To, d.Subject)
	fresh, err := keys.Reserve(ctx, key)
	if err != nil {
		log.Error("action: idempotency check failed", "error", err)
		return failure(err)
	}
	if !fresh {
		log.Info("action: duplicate email suppressed", "to", d.To, "subject", d.Subject)
		return Result{Success: false, Message: MsgEmailAlreadySent}
	}

	id, err := e.Mail.Send(ctx, d.To, d.Subject, d.Body)
	if err != nil {
		if rerr := keys.Release(context.WithoutCancel(ctx), key); rerr != nil {
			log.Warn("action: release idempotency key", "error", rerr)
		}
		log.Error("action: email send failed", "to", d.To, "error", err)
		return failure(err)
	}
	log.Info("action: email sent", "to", d.To, "subject", d.Subject, "id", id)
	return Result{Success: true, Message: MsgEmailSent, ID: id}
}

// CreateEvent inserts the event. There is no duplicate check.
func (e *Executor) CreateEvent(ctx context.Context, d generator.EventDraft) Result {
	if e.Calendar == nil {
		return failure(errNoCalendar)
	}
	c, err := e.Calendar.Create(ctx, d)
	if err != nil {
		e.logger().Error("action: event creation failed", "summary", d.Summary, "error", err)
		return failure(err)
	}
	link := c.HTMLLink
	if c.MeetLink != "" {
		link = c.MeetLink
	}
	return Result{Success: true, Message: MsgEventCreated, ID: c.ID, Link: link}
}

// PublishPost posts text to LinkedIn.
func (e *Executor) PublishPost(ctx context.Context, text string) Result {
	if e.Publisher == nil {
		return failure(errNoPublisher)
	}
	id, err := e.Publisher.Publish(ctx, text)
	if err != nil {
		e.logger().Error("action: publish failed", "error", err)
		return failure(err)
	}
	return Result{Success: true, Message: MsgPostPublished, ID: id, Link: publisher.PostURL(id)}
}
