package generator

import (
	"context"
	"sync"
	"time"
)

// Session 持有一次帖子主题的多轮生成/修订上下文，供人工审核后再发布。
type Session struct {
	ID    string
	Topic string

	mu      sync.Mutex
	draft   PostDraft
	history []Turn
	agent   *Agent
}

// NewSession 创建 session，尚未生成稿件。
func NewSession(id, topic string, agent *Agent) *Session {
	return &Session{
		ID:    id,
		Topic: topic,
		agent: agent,
	}
}

// Propose 生成首稿。
func (s *Session) Propose(ctx context.Context) (PostDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.agent.GeneratePost(ctx, s.Topic)
	if err != nil {
		return PostDraft{}, err
	}
	s.draft = draft
	s.appendTurn("", draft, "initial draft")
	return draft, nil
}

// Revise 基于审核评论修订稿件。
func (s *Session) Revise(ctx context.Context, comment string) (PostDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.agent.RevisePost(ctx, s.Topic, s.draft, comment, s.history)
	if err != nil {
		return PostDraft{}, err
	}
	s.draft = draft
	s.appendTurn(comment, draft, "revision")
	return draft, nil
}

// Snapshot returns the current draft and a copy of the history.
func (s *Session) Snapshot() (PostDraft, []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := make([]Turn, len(s.history))
	copy(h, s.history)
	return s.draft, h
}

func (s *Session) appendTurn(comment string, draft PostDraft, summary string) {
	s.history = append(s.history, Turn{
		Comment:   comment,
		Draft:     draft,
		Summary:   summary,
		CreatedAt: time.Now(),
	})
}
