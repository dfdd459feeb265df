package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Transport delivers an already composed message and returns its id.
type Transport interface {
	Deliver(ctx context.Context, raw []byte) (string, error)
}

// GmailTransport sends through users.messages.send for the authorised user.
type GmailTransport struct {
	svc *gmail.Service
}

func NewGmailTransport(ctx context.Context, httpClient *http.Client) (*GmailTransport, error) {
	if httpClient == nil {
		return nil, errors.New("mailer: authorised http client is required")
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("mailer: gmail service: %w", err)
	}
	return &GmailTransport{svc: svc}, nil
}

func (g *GmailTransport) Deliver(ctx context.Context, raw []byte) (string, error) {
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	return sent.Id, nil
}

// Sender composes and delivers messages from a fixed address.
type Sender struct {
	from      string
	transport Transport
	now       func() time.Time
	logger    *slog.Logger
}

func NewSender(from string, transport Transport, logger *slog.Logger) (*Sender, error) {
	if transport == nil {
		return nil, errors.New("mailer: transport is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{from: from, transport: transport, now: time.Now, logger: logger}, nil
}

// Send delivers one email and returns the provider message id.
func (s *Sender) Send(ctx context.Context, to, subject, body string) (string, error) {
	raw, err := Compose(Message{From: s.from, To: to, Subject: subject, Body: body}, s.now())
	if err != nil {
		return "", err
	}
	id, err := s.transport.Deliver(ctx, raw)
	if err != nil {
		return "", err
	}
	s.logger.Info("mailer: sent", "to", to, "id", id)
	return id, nil
}
