package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

type section struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Index is an in-memory full-text index over profile sections. It
// satisfies generator.ContextSearcher.
type Index struct {
	index   bleve.Index
	texts   map[string]string
	about   string
	profile *Profile
}

// NewIndex splits p into sections and indexes them.
func NewIndex(p *Profile) (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("profile: create index: %w", err)
	}
	ix := &Index{index: idx, texts: map[string]string{}, profile: p}

	add := func(id string, s section) error {
		if strings.TrimSpace(s.Text) == "" {
			return nil
		}
		ix.texts[id] = s.Text
		return idx.Index(id, s)
	}

	ix.about = strings.TrimSpace(p.About)
	if p.Name != "" && ix.about != "" {
		ix.about = p.Name + ": " + ix.about
	}
	sections := map[string]section{
		"about":  {Kind: "about", Text: ix.about},
		"skills": {Kind: "skills", Text: joinNonEmpty("Skills: ", p.Skills, ", ")},
	}
	for i, a := range p.Achievements {
		sections[fmt.Sprintf("achievement-%d", i)] = section{Kind: "achievement", Text: a}
	}
	for i, pr := range p.Projects {
		sections[fmt.Sprintf("project-%d", i)] = section{Kind: "project", Text: pr.Title + ": " + pr.Description}
	}
	for i, post := range p.LinkedInPosts {
		sections[fmt.Sprintf("post-%d", i)] = section{Kind: "post", Text: post.Title + ": " + post.Content}
	}
	for id, s := range sections {
		if err := add(id, s); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("profile: index %s: %w", id, err)
		}
	}
	return ix, nil
}

func joinNonEmpty(prefix string, items []string, sep string) string {
	if len(items) == 0 {
		return ""
	}
	return prefix + strings.Join(items, sep)
}

// Search returns up to limit sections matching query, best first. With no
// match the about section is returned so drafts still carry some context.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	var out []string
	if strings.TrimSpace(query) != "" {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
		req.Size = limit
		res, err := ix.index.Search(req)
		if err != nil {
			return nil, fmt.Errorf("profile: search: %w", err)
		}
		for _, hit := range res.Hits {
			if t, ok := ix.texts[hit.ID]; ok {
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 && ix.about != "" {
		out = append(out, ix.about)
	}
	return out, nil
}

// WritingStyle returns the author's style notes.
func (ix *Index) WritingStyle() string {
	return ix.profile.WritingStyleNotes
}

func (ix *Index) Close() error { return ix.index.Close() }
