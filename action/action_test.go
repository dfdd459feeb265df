package action

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personal_content_agent/calendar"
	"personal_content_agent/generator"
	"personal_content_agent/idempotency"
)

type countingMail struct {
	calls atomic.Int32
	err   error
}

func (m *countingMail) Send(context.Context, string, string, string) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return "m-1", nil
}

type stubCalendar struct {
	calls int
	err   error
}

func (s *stubCalendar) Create(context.Context, generator.EventDraft) (calendar.Created, error) {
	s.calls++
	if s.err != nil {
		return calendar.Created{}, s.err
	}
	return calendar.Created{ID: "e-1", HTMLLink: "https://calendar/e-1", MeetLink: "https://meet/x"}, nil
}

type stubPublisher struct{ err error }

func (s stubPublisher) Publish(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "urn:li:share:1", nil
}

func TestSendEmailOnlyOnce(t *testing.T) {
	mail := &countingMail{}
	ex := &Executor{Mail: mail, Keys: idempotency.NewMemoryStore()}
	d := generator.EmailDraft{To: "john@acme.io", Subject: "Agenda", Body: "hi"}

	first := ex.SendEmail(context.Background(), d)
	assert.Equal(t, Result{Success: true, Message: MsgEmailSent, ID: "m-1"}, first)

	second := ex.SendEmail(context.Background(), d)
	assert.Equal(t, Result{Success: false, Message: MsgEmailAlreadySent}, second)
	assert.Equal(t, OutcomeDuplicate, second.Outcome())
	assert.Equal(t, int32(1), mail.calls.Load())

	// different subject is a different key
	d.Subject = "Agenda v2"
	assert.True(t, ex.SendEmail(context.Background(), d).Success)
	assert.Equal(t, int32(2), mail.calls.Load())
}

func TestSendEmailConcurrentDuplicates(t *testing.T) {
	mail := &countingMail{}
	ex := &Executor{Mail: mail, Keys: idempotency.NewMemoryStore()}
	d := generator.EmailDraft{To: "a@b.io", Subject: "race"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex.SendEmail(context.Background(), d)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), mail.calls.Load())
}

func TestSendEmailFailureReleasesKey(t *testing.T) {
	mail := &countingMail{err: errors.New("smtp down")}
	ex := &Executor{Mail: mail, Keys: idempotency.NewMemoryStore()}
	d := generator.EmailDraft{To: "a@b.io", Subject: "retry"}

	r := ex.SendEmail(context.Background(), d)
	assert.False(t, r.Success)
	assert.Equal(t, "smtp down", r.Error)
	assert.Equal(t, OutcomeFailure, r.Outcome())

	mail.err = nil
	assert.True(t, ex.SendEmail(context.Background(), d).Success)
	assert.Equal(t, int32(2), mail.calls.Load())
}

func TestSendEmailNotConfigured(t *testing.T) {
	ex := &Executor{Keys: idempotency.NewMemoryStore()}
	r := ex.SendEmail(context.Background(), generator.EmailDraft{To: "a@b.io"})
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.Error)

	ex = &Executor{Mail: &countingMail{}}
	r = ex.SendEmail(context.Background(), generator.EmailDraft{To: "a@b.io"})
	assert.False(t, r.Success)

	ex = &Executor{Mail: &countingMail{}, Keys: idempotency.NewMemoryStore()}
	r = ex.SendEmail(context.Background(), generator.EmailDraft{To: " "})
	assert.False(t, r.Success)
}

func TestCreateEventHasNoDuplicateCheck(t *testing.T) {
	cal := &stubCalendar{}
	ex := &Executor{Calendar: cal}
	d := generator.EventDraft{Summary: "Sync"}

	r1 := ex.CreateEvent(context.Background(), d)
	r2 := ex.CreateEvent(context.Background(), d)
	assert.True(t, r1.Success)
	assert.True(t, r2.Success)
	assert.Equal(t, "https://meet/x", r1.Link)
	assert.Equal(t, 2, cal.calls)

	cal.err = errors.New("quota")
	r := ex.CreateEvent(context.Background(), d)
	assert.Equal(t, Result{Success: false, Error: "quota"}, r)

	assert.False(t, (&Executor{}).CreateEvent(context.Background(), d).Success)
}

func TestPublishPost(t *testing.T) {
	ex := &Executor{Publisher: stubPublisher{}}
	r := ex.PublishPost(context.Background(), "hello")
	require.True(t, r.Success)
	assert.Equal(t, "urn:li:share:1", r.ID)
	assert.Contains(t, r.Link, "urn:li:share:1")

	ex.Publisher = stubPublisher{err: errors.New("401")}
	assert.False(t, ex.PublishPost(context.Background(), "hello").Success)
	assert.False(t, (&Executor{}).PublishPost(context.Background(), "hello").Success)
}

func TestSendEmailRejectsInjectedRecipient(t *testing.T) {
	mail := &countingMail{}
	keys := idempotency.NewMemoryStore()
	ex := &Executor{Mail: mail, Keys: keys}

	bad := generator.EmailDraft{To: "a@b.io\r\nBcc: attacker@evil.test", Subject: "Agenda", Body: "hi"}
	r := ex.SendEmail(context.Background(), bad)
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "invalid address")
	assert.Equal(t, int32(0), mail.calls.Load())

	fresh, err := keys.Reserve(context.Background(), idempotency.EmailKey(bad.To, bad.Subject))
	require.NoError(t, err)
	assert.True(t, fresh, "rejected draft must not hold an idempotency key")
}
