package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"personal_content_agent/generator"
)

// Source tells whether the label came from the model or the keyword table.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Decision is the outcome of one classification.
type Decision struct {
	Intent Intent
	Source Source
	// Raw is the model's unnormalised answer, empty when the call failed.
	Raw string
}

// Router resolves one query to one Intent.
type Router struct {
	llm    generator.LLMClient
	logger *slog.Logger
}

func New(llm generator.LLMClient, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{llm: llm, logger: logger}
}

// Classify calls the model once and falls back to the keyword table when the
// call fails or the answer is not a valid label. It always returns one of
// the six intents.
func (r *Router) Classify(ctx context.Context, query string) Decision {
	if r.llm == nil {
		return Decision{Intent: Fallback(query), Source: SourceFallback}
	}
	raw, err := r.llm.Complete(ctx, BuildPrompt(query))
	if err != nil {
		in := Fallback(query)
		r.logger.Warn("router: classification call failed, using keyword fallback", "error", err, "intent", in)
		return Decision{Intent: in, Source: SourceFallback}
	}
	if in, ok := ParseIntent(raw); ok {
		return Decision{Intent: in, Source: SourceLLM, Raw: raw}
	}
	in := Fallback(query)
	r.logger.Info("router: invalid label, using keyword fallback", "answer", raw, "intent", in)
	return Decision{Intent: in, Source: SourceFallback, Raw: raw}
}

// BuildPrompt enumerates the intents with routing examples.
func BuildPrompt(query string) generator.Prompt {
	var sb strings.Builder
	sb.WriteString("Based on the user's query, determine which agent should handle the request.\n\n")
	sb.WriteString("Available agents:\n")
	sb.WriteString("1. content-creation - creates LinkedIn posts and content\n")
	sb.WriteString("2. profile-analytics - analyzes profile data from an uploaded Excel/CSV analytics export\n")
	sb.WriteString("3. post-analytics - analyzes an existing LinkedIn post from its URL\n")
	sb.WriteString("4. email - writes an email for review before sending\n")
	sb.WriteString("5. calendar - creates an event on Google Calendar\n")
	sb.WriteString("6. compound - several actions in sequence, e.g. create a calendar event and send an email about it\n\n")
	sb.WriteString(fmt.Sprintf("User query: %q\n\n", query))
	sb.WriteString("Routing guidance and examples:\n")
	sb.WriteString("- \"best performing post\", \"top posts\", \"top performing\" and similar analytics questions => profile-analytics\n")
	sb.WriteString("- a LinkedIn post URL, or a request to analyze a specific URL => post-analytics\n")
	sb.WriteString("- a calendar/meeting/event request together with an email => compound\n\n")
	sb.WriteString("Respond with ONLY the agent name.")
	return generator.Prompt{
		System: "You are an intelligent routing agent.",
		User:   sb.String(),
	}
}
