// Package profile holds the author's personal profile and searches it for
// context when drafting posts.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Project struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Post struct {
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
}

// Profile is the personal data used to personalise drafts.
type Profile struct {
	Name              string    `yaml:"name" json:"name"`
	Email             string    `yaml:"email" json:"email"`
	LinkedInURL       string    `yaml:"linkedin_url" json:"linkedin_url"`
	GitHubURL         string    `yaml:"github_url" json:"github_url"`
	About             string    `yaml:"about" json:"about"`
	Skills            []string  `yaml:"skills" json:"skills"`
	Achievements      []string  `yaml:"achievements" json:"achievements"`
	Projects          []Project `yaml:"projects" json:"projects"`
	LinkedInPosts     []Post    `yaml:"linkedin_posts" json:"linkedin_posts"`
	WritingStyleNotes string    `yaml:"writing_style_notes" json:"writing_style_notes"`
}

// Load reads a YAML or JSON profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a profile. JSON input is accepted as YAML.
func Parse(data []byte) (*Profile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("profile: empty file")
	}
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", err)
	}
	return &p, nil
}

// Summary is a short human-readable overview.
func (p *Profile) Summary() string {
	var sb strings.Builder
	sb.WriteString("Name: " + orNA(p.Name) + "\n")
	sb.WriteString("LinkedIn: " + orNA(p.LinkedInURL) + "\n")
	if len(p.Skills) > 0 {
		skills := p.Skills
		if len(skills) > 10 {
			skills = skills[:10]
		}
		sb.WriteString(fmt.Sprintf("Skills (%d): %s\n", len(p.Skills), strings.Join(skills, ", ")))
	}
	if len(p.Projects) > 0 {
		sb.WriteString(fmt.Sprintf("Projects: %d\n", len(p.Projects)))
	}
	if len(p.LinkedInPosts) > 0 {
		sb.WriteString(fmt.Sprintf("LinkedIn posts: %d\n", len(p.LinkedInPosts)))
	}
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
