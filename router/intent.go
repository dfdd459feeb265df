// Package router classifies a free-text request into exactly one intent.
package router

import "strings"

// Intent selects which handler processes a query.
type Intent string

const (
	ContentCreation  Intent = "content-creation"
	ProfileAnalytics Intent = "profile-analytics"
	PostAnalytics    Intent = "post-analytics"
	Email            Intent = "email"
	Calendar         Intent = "calendar"
	Compound         Intent = "compound"
)

// Intents lists the closed set in prompt order.
var Intents = []Intent{ContentCreation, ProfileAnalytics, PostAnalytics, Email, Calendar, Compound}

// aliases accepts the labels older routing prompts used. Anything else that
// is not an exact label goes to the keyword fallback.
var aliases = map[string]Intent{
	"linkedin-post": ContentCreation,
	"calender":      Calendar,
}

// ParseIntent normalises a model answer (trim, lower-case, "_"/" " → "-",
// surrounding quotes and trailing punctuation removed) and reports whether it
// names a valid intent.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "\"'`.*: \t\r\n")
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for _, in := range Intents {
		if s == string(in) {
			return in, true
		}
	}
	if in, ok := aliases[s]; ok {
		return in, true
	}
	return "", false
}
