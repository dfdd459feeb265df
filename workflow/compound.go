package workflow

import (
	"context"
	"fmt"

	"personal_content_agent/action"
	"personal_content_agent/generator"
	"personal_content_agent/router"
)

// CompoundState is the position of a compound run.
type CompoundState string

const (
	StateStart           CompoundState = "START"
	StateCalendarCreated CompoundState = "CALENDAR_CREATED"
	StateEmailDrafted    CompoundState = "EMAIL_DRAFTED"
	StateEmailSent       CompoundState = "EMAIL_SENT"
	StateFailed          CompoundState = "FAILED"
)

const (
	MsgCompoundNotRecognized = "Compound request not recognized"
	MsgEmailDraftFailed      = "Failed to generate email draft"
	MsgEmailNotAttempted     = "email step not attempted: calendar step failed"

	placeholderSummary = "New Event"
	placeholderStart   = "TBD"
)

// compoundRun threads one compound request through its states.
type compoundRun struct {
	o     *Orchestrator
	query string
	state CompoundState
	out   CompoundOutput
}

func (r *compoundRun) to(s CompoundState, attrs ...any) {
	r.o.logger.Info("workflow: compound transition", append([]any{"from", r.state, "to", s}, attrs...)...)
	r.state = s
}

// handleCompound creates the event, then drafts and sends an email about it.
// A created event is never rolled back; both halves are reported.
func (o *Orchestrator) handleCompound(ctx context.Context, query, _ string) any {
	if !router.IsCompound(query) {
		o.logger.Info("workflow: compound trigger not present", "query_len", len(query))
		return ErrorOutput{Error: MsgCompoundNotRecognized}
	}
	r := &compoundRun{o: o, query: query, state: StateStart}
	r.run(ctx)
	r.out.State = r.state
	compoundRunsTotal.WithLabelValues(string(r.state)).Inc()
	return r.out
}

func (r *compoundRun) run(ctx context.Context) {
	ev, err := r.o.drafter.GenerateEvent(ctx, r.query)
	if err != nil {
		r.failCalendar(&CalendarOutput{Result: failed(err.Error())})
		return
	}
	res := r.o.CreateEvent(ctx, ev)
	r.out.Calendar = &CalendarOutput{Event: &ev, Result: res}
	if !res.Success {
		r.failCalendar(r.out.Calendar)
		return
	}
	r.to(StateCalendarCreated, "event_id", res.ID)

	draft, err := r.o.drafter.GenerateEmail(ctx, followUpQuery(r.query, ev))
	if err != nil || draft == (generator.EmailDraft{}) {
		if err != nil {
			r.o.logger.Warn("workflow: compound email draft failed", "error", err)
		}
		r.out.Email = &EmailStepOutput{Result: failed(MsgEmailDraftFailed)}
		r.to(StateFailed, "reason", MsgEmailDraftFailed)
		return
	}
	r.to(StateEmailDrafted, "to", draft.To)

	// the draft is auto-approved here, unlike the standalone email route
	sent := r.o.SendDraft(ctx, draft)
	r.out.Email = &EmailStepOutput{Draft: &draft, Result: sent}
	if sent.Success || sent.Outcome() == action.OutcomeDuplicate {
		r.to(StateEmailSent)
		return
	}
	r.to(StateFailed, "reason", sent.Error)
}

func (r *compoundRun) failCalendar(cal *CalendarOutput) {
	r.out.Calendar = cal
	r.out.Email = &EmailStepOutput{Result: failed(MsgEmailNotAttempted)}
	r.to(StateFailed, "reason", cal.Error)
}

// followUpQuery builds the email instruction from the created event.
func followUpQuery(original string, ev generator.EventDraft) string {
	summary := ev.Summary
	if summary == "" {
		summary = placeholderSummary
	}
	start := ev.StartDateTime
	if start == "" {
		start = placeholderStart
	}
	return fmt.Sprintf("Write an email about the calendar event %q scheduled for %s. Original request: %s", summary, start, original)
}
