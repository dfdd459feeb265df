package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// 根据提示词里的格式要求返回对应的标注字段。
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	sys := strings.ToLower(prompt.System)
	switch {
	case strings.Contains(sys, "routing agent"):
		// 不是合法标签，路由会走关键词兜底
		return "unsure", nil
	case strings.Contains(sys, "email writer"):
		return fmt.Sprintf("To: %s\nSubject: Follow-up\nBody: Hello,\n\n%s\n\nBest regards", DefaultRecipient, prompt.User), nil
	case strings.Contains(sys, "calendar event generator"):
		start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
		return fmt.Sprintf("summary: Meeting\nstart_datetime: %s\nend_datetime: %s\ntimezone: UTC\nlocation: Online\ndescription: %s",
			start.Format(EventTimeLayout), start.Add(time.Hour).Format(EventTimeLayout), prompt.User), nil
	default:
		var sb strings.Builder
		sb.WriteString("Here is a thought worth sharing.\n\n")
		sb.WriteString(prompt.User)
		sb.WriteString("\n\nWhat do you think?\n\n#automation #golang")
		return sb.String(), nil
	}
}
