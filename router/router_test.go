package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"personal_content_agent/generator"
)

type answerLLM struct {
	answer string
	err    error
	calls  int
}

func (a *answerLLM) Complete(context.Context, generator.Prompt) (string, error) {
	a.calls++
	return a.answer, a.err
}

func TestParseIntent(t *testing.T) {
	cases := map[string]Intent{
		"compound":            Compound,
		"  Content-Creation\n": ContentCreation,
		"profile_analytics":   ProfileAnalytics,
		"\"post analytics\".": PostAnalytics,
		"calender":            Calendar,
		"linkedin_post":       ContentCreation,
		"EMAIL":               Email,
	}
	for in, want := range cases {
		got, ok := ParseIntent(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"I think you want the email agent", "post", "content", "event"} {
		_, ok := ParseIntent(bad)
		assert.False(t, ok, bad)
	}
}

func TestFallbackOrder(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"Create a calendar event and email the team", Compound},
		{"email the team and then add it to my calender", Compound},
		{"SCHEDULE A MEETING AND MAIL JOHN", Compound},
		{"Write a LinkedIn post about my sheet music hobby", ContentCreation},
		{"which is my best performing post?", ProfileAnalytics},
		{"summarize the excel export", ProfileAnalytics},
		{"analyze post https://www.linkedin.com/feed/update/urn:li:activity:1", PostAnalytics},
		{"here is the url of something", PostAnalytics},
		{"send mail to hr about leave", Email},
		{"write an email to ali@corp.com", Email},
		{"put a meeting on friday", Calendar},
		{"tell me something about go", ContentCreation},
		{"", ContentCreation},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Fallback(c.query), c.query)
	}
}

func TestCompoundRegardlessOfOrderAndCase(t *testing.T) {
	cal := []string{"Calendar", "EVENT", "meeting", "Schedule", "calender"}
	mail := []string{"Email", "MAIL", "e-mail"}
	for _, c := range cal {
		for _, m := range mail {
			assert.Equal(t, Compound, Fallback(c+" then "+m), c+"/"+m)
			assert.Equal(t, Compound, Fallback(m+" then "+c), m+"/"+c)
			assert.True(t, IsCompound(strings.ToUpper(m+" "+c)))
		}
	}
	assert.False(t, IsCompound("just an email"))
}

func TestBareLinkedInURLRoutesToPostAnalytics(t *testing.T) {
	urls := []string{
		"https://www.linkedin.com/feed/update/urn:li:activity:7212345678901234567",
		"https://www.linkedin.com/posts/someone_golang-activity-7212345678901234567-abcd",
		"linkedin.com/feed/update/urn:li:activity:1",
	}
	for _, u := range urls {
		r := New(&answerLLM{answer: "no idea"}, nil)
		d := r.Classify(context.Background(), u)
		assert.Equal(t, PostAnalytics, d.Intent, u)
		assert.Equal(t, SourceFallback, d.Source)
	}
}

func TestAmbiguousAnswerUsesKeywordTable(t *testing.T) {
	const url = "https://www.linkedin.com/feed/update/urn:li:activity:7212345678901234567"
	for answer, want := range map[string]Intent{
		"post":    PostAnalytics,
		"content": PostAnalytics,
		"event":   PostAnalytics,
	} {
		d := New(&answerLLM{answer: answer}, nil).Classify(context.Background(), url)
		assert.Equal(t, want, d.Intent, answer)
		assert.Equal(t, SourceFallback, d.Source, answer)
		assert.Equal(t, answer, d.Raw)
	}
}

func TestClassifyUsesModelAnswer(t *testing.T) {
	llm := &answerLLM{answer: "Compound"}
	d := New(llm, nil).Classify(context.Background(), "Schedule a meeting with John tomorrow at 3pm and email him the agenda")
	assert.Equal(t, Compound, d.Intent)
	assert.Equal(t, SourceLLM, d.Source)
	assert.Equal(t, 1, llm.calls)
}

func TestClassifyFallsBackOnError(t *testing.T) {
	llm := &answerLLM{err: errors.New("timeout")}
	d := New(llm, nil).Classify(context.Background(), "put a meeting on friday")
	assert.Equal(t, Calendar, d.Intent)
	assert.Equal(t, SourceFallback, d.Source)
}

func TestClassifyWithoutModel(t *testing.T) {
	d := New(nil, nil).Classify(context.Background(), "top posts this month")
	assert.Equal(t, ProfileAnalytics, d.Intent)
}

func TestPromptListsEveryIntent(t *testing.T) {
	p := BuildPrompt("x")
	for _, in := range Intents {
		assert.Contains(t, p.User, string(in))
	}
}
