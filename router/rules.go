package router

import "strings"

// Term groups shared by the fallback table and the compound handler.
var (
	CalendarTerms = []string{"calendar", "calender", "event", "meeting", "schedule"}
	EmailTerms    = []string{"email", "e-mail", "mail"}
)

// rule matches when every group has at least one term present.
type rule struct {
	intent Intent
	groups [][]string
}

func (r rule) match(q string) bool {
	for _, g := range r.groups {
		if !containsAny(q, g) {
			return false
		}
	}
	return true
}

// fallbackRules is evaluated top to bottom; the first match wins. Compound
// comes first so a query naming both a calendar term and an email term never
// lands on just one of them.
var fallbackRules = []rule{
	{Compound, [][]string{CalendarTerms, EmailTerms}},
	{ContentCreation, [][]string{{"linkedin post", "create post", "create a post", "write a post", "draft a post"}}},
	{ProfileAnalytics, [][]string{{"profile analytics", "excel", "sheet", "best performing", "top post", "top-performing", "top performing", "best post"}}},
	{PostAnalytics, [][]string{{"analyze post", "analyse post", "url", "linkedin.com/", "http://", "https://"}}},
	{Email, [][]string{{"email", "send mail", "e-mail"}}},
	{Calendar, [][]string{{"calendar", "calender", "event", "meeting", "schedule"}}},
}

// Fallback classifies by keywords alone. It is pure and never fails;
// unmatched queries default to content creation.
func Fallback(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range fallbackRules {
		if r.match(q) {
			return r.intent
		}
	}
	return ContentCreation
}

// IsCompound reports whether the query names both a calendar term and an
// email term, in any order or case.
func IsCompound(query string) bool {
	return fallbackRules[0].match(strings.ToLower(query))
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
