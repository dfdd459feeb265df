package generator

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseEmailDraft(t *testing.T) {
	raw := "To: john@acme.io\nSubject: Agenda for tomorrow\nBody: Hi John,\n\nPlease find the agenda below.\n\nThanks"
	d := ParseEmailDraft(raw, "email john the agenda", "")
	assert.Equal(t, "john@acme.io", d.To)
	assert.Equal(t, "Agenda for tomorrow", d.Subject)
	assert.Equal(t, "Hi John,\n\nPlease find the agenda below.\n\nThanks", d.Body)
}

func TestParseEmailDraftDefaults(t *testing.T) {
	d := ParseEmailDraft("just some text", "write an email", "me@example.org")
	assert.Equal(t, "me@example.org", d.To)
	assert.Equal(t, DefaultSubject, d.Subject)
	assert.Equal(t, "just some text", d.Body)

	d = ParseEmailDraft("To: <recipient email>\nSubject: Hi\nBody: x", "send to ali@corp.com", "")
	assert.Equal(t, "ali@corp.com", d.To, "placeholder To line falls back to the address in the query")

	d = ParseEmailDraft("**Subject:** Launch\n**Body:** Ready.", "", "")
	assert.Equal(t, DefaultRecipient, d.To)
	assert.Equal(t, "Launch", d.Subject)
	assert.Equal(t, "Ready.", d.Body)
}

func TestParseEventDraft(t *testing.T) {
	raw := `summary: Sync with John
start_datetime: 2025-08-21 15:00:00
end_datetime: 2025-08-21 16:00:00
timezone: Asia/Karachi
location: Zoom
description: Weekly sync`
	ev := ParseEventDraft(raw, "q")
	assert.Equal(t, "Sync with John", ev.Summary)
	assert.Equal(t, "2025-08-21 15:00:00", ev.StartDateTime)
	assert.Equal(t, "2025-08-21 16:00:00", ev.EndDateTime)
	assert.Equal(t, "Asia/Karachi", ev.Timezone)
	assert.Equal(t, "Zoom", ev.Location)
	assert.Equal(t, "Weekly sync", ev.Description)
	assert.Equal(t, []Reminder{{Method: "popup", Minutes: 60}}, ev.Reminders)
	assert.True(t, ev.ConferenceData)
	assert.Equal(t, "5", ev.ColorID)
}

func TestParseEventDraftMissingLocation(t *testing.T) {
	raw := "summary: Standup\nstart_datetime: 2025-01-02 09:00:00\nend_datetime: 2025-01-02 09:15:00\ntimezone: UTC"
	ev := ParseEventDraft(raw, "standup tomorrow")
	assert.Empty(t, ev.Location)
	assert.Equal(t, "standup tomorrow", ev.Description)
	assert.Equal(t, "Standup", ev.Summary)
}

func TestCleanPost(t *testing.T) {
	assert.Equal(t, "Hello world", CleanPost("```\nHello world\n```"))
	assert.Equal(t, "Hello world", CleanPost("```text\nHello world```"))
	assert.Equal(t, "plain", CleanPost("  plain  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "one two...", Truncate("one two three", 9))
	// 空格太靠前时不回退，避免丢掉大半内容。
	assert.Equal(t, "a bcdefghij...", Truncate("a bcdefghijklmn", 11))

	cjk := Truncate("数据分析报告数据分析报告", 5)
	assert.Equal(t, "数据分析报...", cjk)
	assert.True(t, utf8.ValidString(cjk))
}
