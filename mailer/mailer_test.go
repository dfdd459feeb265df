package mailer

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMultipart(t *testing.T) {
	raw, err := Compose(Message{
		From:    "me@example.org",
		To:      "john@acme.io",
		Subject: "Agenda",
		Body:    "Hi John,\n\n**Agenda** for tomorrow",
	}, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "john@acme.io", msg.Header.Get("To"))
	assert.Equal(t, "me@example.org", msg.Header.Get("From"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var parts []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, p.Header.Get("Content-Type")+"|"+string(b))
	}
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "text/plain")
	assert.Contains(t, parts[0], "**Agenda**")
	assert.Contains(t, parts[1], "text/html")
	assert.Contains(t, parts[1], "<strong>Agenda</strong>")
}

func TestComposeRequiresRecipient(t *testing.T) {
	_, err := Compose(Message{Subject: "x"}, time.Now())
	require.Error(t, err)
}

func TestComposeRejectsHeaderInjection(t *testing.T) {
	for _, to := range []string{
		"a@b.io\r\nBcc: attacker@evil.test",
		"a@b.io\nBcc: attacker@evil.test",
		"a@b.io, c@d.io",
		"not an address",
	} {
		_, err := Compose(Message{To: to, Subject: "x", Body: "y"}, time.Now())
		require.ErrorIs(t, err, ErrBadAddress, to)
	}

	_, err := Compose(Message{From: "me@x.io\r\nBcc: e@evil.test", To: "a@b.io"}, time.Now())
	require.ErrorIs(t, err, ErrBadAddress)

	raw, err := Compose(Message{To: "John Doe <john@acme.io>", Subject: "x\r\nBcc: e@evil.test", Body: "y"}, time.Now())
	require.NoError(t, err)
	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Empty(t, msg.Header.Get("Bcc"))
}

type recordingTransport struct {
	raws [][]byte
	err  error
}

func (r *recordingTransport) Deliver(_ context.Context, raw []byte) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.raws = append(r.raws, raw)
	return "msg-1", nil
}

func TestSenderSend(t *testing.T) {
	tr := &recordingTransport{}
	s, err := NewSender("me@example.org", tr, nil)
	require.NoError(t, err)

	id, err := s.Send(context.Background(), "a@b.io", "Hi", "body")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	require.Len(t, tr.raws, 1)
	assert.Contains(t, string(tr.raws[0]), "To: a@b.io")

	tr.err = errors.New("quota")
	_, err = s.Send(context.Background(), "a@b.io", "Hi", "body")
	require.Error(t, err)
}
