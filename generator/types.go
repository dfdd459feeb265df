package generator

import "time"

// Kind 标识草稿类型，决定提示词与字段解析方式。
type Kind string

const (
	KindEmail Kind = "email"
	KindEvent Kind = "event"
	KindPost  Kind = "post"
)

const (
	// DefaultRecipient is the sentinel used when neither the query nor the
	// model response names a recipient.
	DefaultRecipient = "default@example.com"
	DefaultSubject   = "No Subject"

	DefaultReminderMethod  = "popup"
	DefaultReminderMinutes = 60
	DefaultColorID         = "5"
)

// EmailDraft is a reviewable email awaiting an explicit send.
type EmailDraft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Reminder mirrors a calendar reminder override.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int64  `json:"minutes"`
}

// EventDraft holds calendar fields extracted from model output. Start and
// end are kept in the "YYYY-MM-DD HH:MM:SS" form the model is asked for.
type EventDraft struct {
	Summary        string     `json:"summary"`
	StartDateTime  string     `json:"start_datetime"`
	EndDateTime    string     `json:"end_datetime"`
	Timezone       string     `json:"timezone"`
	Location       string     `json:"location"`
	Description    string     `json:"description"`
	Reminders      []Reminder `json:"reminders"`
	ConferenceData bool       `json:"conference_data"`
	ColorID        string     `json:"color_id"`
}

// PostDraft is the generated LinkedIn post.
type PostDraft struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
	// ContextDocs 记录用于个性化的资料条数。
	ContextDocs int `json:"personal_context"`
}

// Turn 记录一次评论驱动的修订。
type Turn struct {
	Comment   string    `json:"comment"`
	Draft     PostDraft `json:"draft"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
