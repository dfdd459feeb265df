package generator

import (
	"regexp"
	"strings"
)

// EventTimeLayout is the datetime format event drafts carry.
const EventTimeLayout = "2006-01-02 15:04:05"

var (
	emailAddrRe = regexp.MustCompile(`[\w.+-]+@[\w-]+(\.[\w-]+)+`)
	fieldCache  = map[string]*regexp.Regexp{}
)

// labelRe 匹配 "Label: value" 行，容忍 markdown 加粗与大小写差异。
func labelRe(label string) *regexp.Regexp {
	if re, ok := fieldCache[label]; ok {
		return re
	}
	return regexp.MustCompile(`(?im)^[ \t*_]*` + regexp.QuoteMeta(label) + `[ \t*_]*:[ \t*_]*(.*)$`)
}

func init() {
	for _, l := range []string{"to", "subject", "summary", "start_datetime", "end_datetime", "timezone", "location", "description"} {
		fieldCache[l] = labelRe(l)
	}
}

var bodyRe = regexp.MustCompile(`(?ims)^[ \t*_]*body[ \t*_]*:[ \t*_]*(.*)`)

// extractField returns the trimmed value of the first "label: value" line.
func extractField(text, label string) (string, bool) {
	m := labelRe(label).FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// ExtractEmail returns the first address found in s.
func ExtractEmail(s string) (string, bool) {
	addr := emailAddrRe.FindString(s)
	return addr, addr != ""
}

// ParseEmailDraft 按 To/Subject/Body 顺序解析模型输出，缺失字段用默认值补齐。
func ParseEmailDraft(raw, query, fallbackRecipient string) EmailDraft {
	if fallbackRecipient == "" {
		fallbackRecipient = DefaultRecipient
	}
	text := strings.TrimSpace(raw)

	to := fallbackRecipient
	if v, ok := extractField(text, "to"); ok {
		if addr, ok := ExtractEmail(v); ok {
			to = addr
		} else if addr, ok := ExtractEmail(query); ok {
			to = addr
		}
	} else if addr, ok := ExtractEmail(query); ok {
		to = addr
	}

	subject := DefaultSubject
	if v, ok := extractField(text, "subject"); ok {
		subject = v
	}

	body := text
	if m := bodyRe.FindStringSubmatch(text); len(m) >= 2 && strings.TrimSpace(m[1]) != "" {
		body = strings.TrimSpace(m[1])
	}

	return EmailDraft{To: to, Subject: subject, Body: body}
}

// ParseEventDraft extracts the event fields. Missing lines stay empty except
// description, which falls back to the query; reminders, conference and
// color are fixed.
func ParseEventDraft(raw, query string) EventDraft {
	text := strings.TrimSpace(raw)
	ev := EventDraft{
		Reminders:      []Reminder{{Method: DefaultReminderMethod, Minutes: DefaultReminderMinutes}},
		ConferenceData: true,
		ColorID:        DefaultColorID,
	}
	ev.Summary, _ = extractField(text, "summary")
	ev.StartDateTime, _ = extractField(text, "start_datetime")
	ev.EndDateTime, _ = extractField(text, "end_datetime")
	ev.Timezone, _ = extractField(text, "timezone")
	ev.Location, _ = extractField(text, "location")
	if v, ok := extractField(text, "description"); ok {
		ev.Description = v
	} else {
		ev.Description = query
	}
	return ev
}

// CleanPost 去掉模型常见的代码块包裹。
func CleanPost(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.Index(s, "\n"); i >= 0 && !strings.Contains(s[:i], " ") {
			// drop a language tag such as ```text
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
