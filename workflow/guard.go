package workflow

import "strings"

// Guard messages are shown to the user as-is.
const (
	MsgNoAnalyticsFile = "No analytics file provided. Please upload your LinkedIn analytics Excel/CSV file."
	MsgNeedPostURL     = "Post analysis expects a LinkedIn post URL. Try asking for 'best performing post' to use profile analytics, or provide a specific post URL."
)

// checkProfileInput 要求上传的分析文件路径非空。
func checkProfileInput(filePath string) (string, bool) {
	if strings.TrimSpace(filePath) == "" {
		return MsgNoAnalyticsFile, false
	}
	return "", true
}

// checkPostQuery requires a URL-shaped query: a linkedin.com link or
// anything starting with a scheme.
func checkPostQuery(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(q, "linkedin.com") || strings.HasPrefix(q, "http") {
		return "", true
	}
	return MsgNeedPostURL, false
}
