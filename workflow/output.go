package workflow

import (
	"personal_content_agent/action"
	"personal_content_agent/generator"
	"personal_content_agent/router"
)

// Response status tags, one per drafting route.
const (
	StatusDraftGenerated    = "draft_generated"
	StatusContentGenerated  = "content_generated"
	StatusCalendarGenerated = "calendar_generated"
	StatusCompoundCompleted = "compound_completed"
)

// Envelope is what Run returns for every query.
type Envelope struct {
	Route  router.Intent `json:"route"`
	Output any           `json:"output"`
}

// Status returns the tag for the envelope's route, or "".
func (e Envelope) Status() string {
	switch e.Route {
	case router.Email:
		return StatusDraftGenerated
	case router.ContentCreation:
		return StatusContentGenerated
	case router.Calendar:
		return StatusCalendarGenerated
	case router.Compound:
		return StatusCompoundCompleted
	}
	return ""
}

type ContentOutput struct {
	Content string `json:"content"`
	// PersonalContext is the number of profile snippets used.
	PersonalContext int `json:"personal_context,omitempty"`
}

type EmailOutput struct {
	Draft  generator.EmailDraft `json:"draft"`
	Status string               `json:"status"`
}

// CalendarOutput carries the drafted event and the creation result.
type CalendarOutput struct {
	Event *generator.EventDraft `json:"event,omitempty"`
	action.Result
}

type AnalyticsOutput struct {
	Success      bool   `json:"success"`
	Analysis     string `json:"analysis,omitempty"`
	AnalysisType string `json:"analysis_type,omitempty"`
	Error        string `json:"error,omitempty"`
}

// EmailStepOutput is the email half of a compound run.
type EmailStepOutput struct {
	Draft *generator.EmailDraft `json:"draft,omitempty"`
	action.Result
}

type CompoundOutput struct {
	Calendar *CalendarOutput  `json:"calendar"`
	Email    *EmailStepOutput `json:"email"`
	State    CompoundState    `json:"state"`
}

// ErrorOutput is returned for a compound query that does not match the
// compound trigger.
type ErrorOutput struct {
	Error string `json:"error"`
}

func failed(msg string) action.Result {
	return action.Result{Success: false, Error: msg}
}
