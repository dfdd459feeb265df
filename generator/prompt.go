package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System  string
	User    string
	History []Message
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

const emailSystem = "You are a professional email writer with extensive experience. Reply only in the requested format."

// BuildEmailPrompt asks for a To/Subject/Body triple.
func BuildEmailPrompt(query, fallbackRecipient string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User input: %q\n\n", query))
	sb.WriteString("Extract the subject from the user input and write a concise, professional email body (3-6 sentences, polite tone).\n\n")
	sb.WriteString("Important guidelines:\n")
	sb.WriteString("- Don't use placeholder text like [Date], [Your Name], [Your Company]\n")
	sb.WriteString("- Only include specific details if provided by the user\n\n")
	sb.WriteString("Return your answer in this exact format:\n")
	sb.WriteString(fmt.Sprintf("To: <recipient email> if no address is given use %s\n", fallbackRecipient))
	sb.WriteString("Subject: <subject line>\n")
	sb.WriteString("Body: <email body>\n")
	return Prompt{System: emailSystem, User: sb.String()}
}

// BuildEmailCompactPrompt is the retry prompt used after an input-too-large error.
func BuildEmailCompactPrompt(query, fallbackRecipient string) Prompt {
	user := fmt.Sprintf("Write a short email for: %q\nFormat:\nTo: <email or %s>\nSubject: <subject>\nBody: <body>", Truncate(query, 500), fallbackRecipient)
	return Prompt{System: emailSystem, User: user}
}

const eventSystem = "You are a calendar event generator. Reply only with key-value lines, no JSON."

// BuildEventPrompt asks for the calendar fields as labeled lines.
func BuildEventPrompt(query string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("User input: %q\n", query))
	sb.WriteString("Generate an event on the calendar based on the user input.\n\n")
	sb.WriteString("Return ONLY in this exact format:\n\n")
	sb.WriteString("summary: <event summary>\n")
	sb.WriteString("start_datetime: <event start datetime in YYYY-MM-DD HH:MM:SS format>\n")
	sb.WriteString("end_datetime: <event end datetime in YYYY-MM-DD HH:MM:SS format>\n")
	sb.WriteString("timezone: <IANA timezone, e.g. Asia/Karachi>\n")
	sb.WriteString("location: <event location>\n")
	sb.WriteString("description: <event description>\n")
	return Prompt{System: eventSystem, User: sb.String()}
}

func BuildEventCompactPrompt(query string) Prompt {
	user := fmt.Sprintf("Event request: %q\nReply with lines summary:, start_datetime:, end_datetime:, timezone:, location:, description:", Truncate(query, 500))
	return Prompt{System: eventSystem, User: user}
}

const postSystem = "You are a professional LinkedIn content creator. Output only the post text."

// PostContext 是个性化资料（来自个人档案检索）。
type PostContext struct {
	Snippets     []string
	WritingStyle string
}

// BuildPostPrompt 生成带个人资料的帖子提示词。
func BuildPostPrompt(topic string, pc PostContext) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create an engaging LinkedIn post about %s.\n\n", topic))
	sb.WriteString("Identify the post type from the topic: achievement, insight, question, story or general.\n\n")
	if len(pc.Snippets) > 0 {
		sb.WriteString("Use this personal context to make it authentic. Tell only what actually happened:\n")
		sb.WriteString(Truncate(strings.Join(pc.Snippets, "\n"), maxContextChars))
		sb.WriteString("\n\n")
	}
	if pc.WritingStyle != "" {
		sb.WriteString(fmt.Sprintf("Writing style guidance: %s\n\n", Truncate(pc.WritingStyle, maxStyleChars)))
	}
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Start with an engaging hook\n")
	sb.WriteString("- Never use emoji\n")
	sb.WriteString("- End with a question to encourage engagement\n")
	sb.WriteString("- Add 3-5 relevant hashtags\n")
	sb.WriteString("- Keep it under 500 words, short paragraphs or bullet points\n")
	sb.WriteString("- Add a P.S. relevant to the topic\n")
	sb.WriteString("- Do not introduce the post, start with the content\n")
	return Prompt{System: postSystem, User: sb.String()}
}

// BuildPostCompactPrompt drops the personal context entirely.
func BuildPostCompactPrompt(topic string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a concise LinkedIn post about %s.\n\n", Truncate(topic, 300)))
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Start with an engaging hook\n")
	sb.WriteString("- Never use emoji\n")
	sb.WriteString("- Keep it under 200 words\n")
	sb.WriteString("- Add 3-5 relevant hashtags\n")
	return Prompt{System: postSystem, User: sb.String()}
}

// BuildRevisionPrompt 生成修订提示词。
func BuildRevisionPrompt(topic string, prev PostDraft, comment string, history []Turn) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a professional editor. Apply the reviewer's feedback to the LinkedIn post with the smallest necessary change.\n")
	sb.WriteString("- Keep the hook, the closing question and the hashtags unless the feedback asks otherwise.\n")
	sb.WriteString("- Never use emoji.\n")
	sb.WriteString("- Output only the revised post.\n")

	user := fmt.Sprintf("Topic: %s\n\nCurrent post:\n%s\n\nReviewer feedback: %s\nOutput the full revised post.", topic, prev.Content, comment)

	var msgs []Message
	for _, t := range history {
		if t.Comment == "" {
			continue
		}
		msgs = append(msgs, Message{Role: "user", Content: t.Comment})
	}

	return Prompt{
		System:  sb.String(),
		User:    user,
		History: msgs,
	}
}

const (
	maxContextChars = 1500
	maxStyleChars   = 500
)

// Truncate keeps at most limit characters (runes), backs off to a word
// boundary in the second half of the cut, and appends "...".
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := string([]rune(s)[:limit])
	if i := strings.LastIndex(cut, " "); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
