package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"personal_content_agent/generator"
)

const (
	TypeGeneral = "general"
	TypePost    = "post"

	linkedInPrefix = "https://www.linkedin.com/"
	maxDataChars   = 12000
)

// postQuestionPhrases route a profile question to best-post analysis.
var postQuestionPhrases = []string{
	"analyze best", "analyze top post", "analyze post", "top post content",
	"url", "top post", "performing post", "best performing post",
}

// urlFields are the TOP POSTS columns that may hold the post link.
var urlFields = []string{"Post URL", "URL", "Link", "Post Link", "Post", "Activity URL"}

var urlRe = regexp.MustCompile(`https?://[^\s"'<>]+`)

const postRubric = `For your analysis include:
1) Engagement score (1-10) with a one-line reason
2) Key strengths (3-5 points)
3) Areas for improvement (3-5 points)
4) Expected reach potential (Low/Med/High) and why
5) Hashtag effectiveness (comment on density/relevance)
6) CTA quality (what to fix/add)
7) 3 concrete edits to boost engagement`

// PostFetcher returns the text of a post page.
type PostFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// AnalysisType classifies a profile question.
func AnalysisType(question string) string {
	q := strings.ToLower(question)
	for _, p := range postQuestionPhrases {
		if strings.Contains(q, p) {
			return TypePost
		}
	}
	return TypeGeneral
}

// ProfileReport is the outcome of a profile analytics request.
type ProfileReport struct {
	Analysis     string `json:"analysis"`
	AnalysisType string `json:"analysis_type"`
}

// ProfileAnalyzer answers questions about an analytics export.
type ProfileAnalyzer struct {
	llm     generator.LLMClient
	loader  *Loader
	fetcher PostFetcher
	logger  *slog.Logger
}

func NewProfileAnalyzer(llm generator.LLMClient, loader *Loader, fetcher PostFetcher, logger *slog.Logger) (*ProfileAnalyzer, error) {
	if llm == nil || loader == nil || fetcher == nil {
		return nil, errors.New("analytics: llm, loader and fetcher are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileAnalyzer{llm: llm, loader: loader, fetcher: fetcher, logger: logger}, nil
}

// AnalyzeProfile loads the export at file and answers question.
func (p *ProfileAnalyzer) AnalyzeProfile(ctx context.Context, file, question string) (ProfileReport, error) {
	exp, err := p.loader.Load(file)
	if err != nil {
		return ProfileReport{}, err
	}
	kind := AnalysisType(question)
	p.logger.Info("analytics: profile analysis", "type", kind, "top_posts", len(exp.TopPosts))

	if kind == TypePost {
		url, err := BestPostURL(exp.TopPosts)
		if err != nil {
			return ProfileReport{}, err
		}
		text, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			return ProfileReport{}, fmt.Errorf("scrape best post: %w", err)
		}
		out, err := p.llm.Complete(ctx, bestPostPrompt(url, text, exp.TopPosts[0]))
		if err != nil {
			return ProfileReport{}, fmt.Errorf("analyze best post: %w", err)
		}
		return ProfileReport{
			Analysis:     fmt.Sprintf("# LinkedIn Post Analysis\n\n**Analyzed Post URL:** %s\n\n%s", url, strings.TrimSpace(out)),
			AnalysisType: TypePost,
		}, nil
	}

	out, err := p.llm.Complete(ctx, generalPrompt(question, exp))
	if err != nil {
		return ProfileReport{}, fmt.Errorf("analyze profile: %w", err)
	}
	return ProfileReport{
		Analysis:     "# LinkedIn Analytics Report\n\n" + strings.TrimSpace(out),
		AnalysisType: TypeGeneral,
	}, nil
}

// BestPostURL takes the link of the first (best) top post.
func BestPostURL(top []Record) (string, error) {
	if len(top) == 0 {
		return "", fmt.Errorf("%w: top posts sheet is empty", ErrNoURL)
	}
	best := top[0]
	for _, field := range urlFields {
		for k, v := range best {
			if !strings.EqualFold(strings.TrimSpace(k), field) {
				continue
			}
			s, _ := v.(string)
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if !strings.HasPrefix(s, linkedInPrefix) {
				return "", fmt.Errorf("%w: %q is not a linkedin url", ErrNoURL, s)
			}
			return s, nil
		}
	}
	return "", ErrNoURL
}

func bestPostPrompt(url, text string, row Record) generator.Prompt {
	metrics, _ := json.Marshal(row)
	var sb strings.Builder
	sb.WriteString("This is the best performing post from the user's analytics export.\n\n")
	sb.WriteString(fmt.Sprintf("URL: %s\nMetrics: %s\n\nPost text:\n%s\n\n", url, metrics, text))
	sb.WriteString(postRubric)
	sb.WriteString("\n8) Why this post outperformed the others\n\nEnd with a crisp 2-3 line summary strategy.")
	return generator.Prompt{System: "You are a LinkedIn profile analytics assistant.", User: sb.String()}
}

func generalPrompt(question string, exp *Export) generator.Prompt {
	if strings.TrimSpace(question) == "" {
		question = "Give me a strategy from the analytics."
	}
	data, _ := json.Marshal(exp)
	payload := generator.Truncate(string(data), maxDataChars)
	var sb strings.Builder
	sb.WriteString("Analytics data (JSON):\n")
	sb.WriteString(payload)
	sb.WriteString("\n\nSummarize key trends and month-over-month growth, the top posts by impressions and engagement, ")
	sb.WriteString("audience demographics, and give concrete recommendations.\n\nUser request:\n")
	sb.WriteString(question)
	return generator.Prompt{System: "You are a LinkedIn profile analytics assistant.", User: sb.String()}
}

// PostAnalyzer scores a single post given its URL.
type PostAnalyzer struct {
	llm     generator.LLMClient
	fetcher PostFetcher
}

func NewPostAnalyzer(llm generator.LLMClient, fetcher PostFetcher) (*PostAnalyzer, error) {
	if llm == nil || fetcher == nil {
		return nil, errors.New("analytics: llm and fetcher are required")
	}
	return &PostAnalyzer{llm: llm, fetcher: fetcher}, nil
}

// PostURLFromQuery pulls the post link out of a free-text query.
func PostURLFromQuery(query string) (string, error) {
	if m := urlRe.FindString(query); m != "" {
		return strings.TrimRight(m, ".,;)"), nil
	}
	for _, f := range strings.Fields(query) {
		if strings.Contains(strings.ToLower(f), "linkedin.com/") {
			return "https://" + strings.TrimRight(f, ".,;)"), nil
		}
	}
	return "", ErrNoURL
}

// AnalyzePost scrapes the post in query and returns the rubric analysis.
func (p *PostAnalyzer) AnalyzePost(ctx context.Context, query string) (string, error) {
	url, err := PostURLFromQuery(query)
	if err != nil {
		return "", err
	}
	text, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("scrape post: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Post text:\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")
	sb.WriteString(postRubric)
	sb.WriteString("\n\nEnd with a crisp 2-3 line summary strategy.")
	out, err := p.llm.Complete(ctx, generator.Prompt{System: "You are a LinkedIn content performance analyst.", User: sb.String()})
	if err != nil {
		return "", fmt.Errorf("analyze post: %w", err)
	}
	return fmt.Sprintf("# LinkedIn Post Analysis\n\n**Analyzed Post URL:** %s\n\n%s", url, strings.TrimSpace(out)), nil
}
