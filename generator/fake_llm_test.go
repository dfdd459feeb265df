package generator

import (
	"context"
	"sync"
)

type scriptedLLM struct {
	mu      sync.Mutex
	replies []scriptedReply
	prompts []Prompt
}

type scriptedReply struct {
	text string
	err  error
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	if len(s.replies) == 0 {
		return "", nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

type staticProfile struct {
	snippets []string
	style    string
}

func (p staticProfile) Search(context.Context, string, int) ([]string, error) {
	return p.snippets, nil
}

func (p staticProfile) WritingStyle() string { return p.style }
