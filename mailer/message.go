// Package mailer composes and sends email through the Gmail API.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/yuin/goldmark"
)

// Message is an outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	// Body is plain text; markdown in it is rendered for the HTML part.
	Body string
}

// ErrBadAddress marks a recipient or sender that cannot go into a header.
var ErrBadAddress = errors.New("mailer: invalid address")

// ValidateAddress accepts a single RFC 5322 address ("a@b.io" or
// "Name <a@b.io>"). Line breaks are rejected outright.
func ValidateAddress(addr string) error {
	if strings.ContainsAny(addr, "\r\n") {
		return fmt.Errorf("%w: %q contains a line break", ErrBadAddress, addr)
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadAddress, addr, err)
	}
	return nil
}

// Compose renders an RFC 5322 multipart/alternative message with a
// text/plain part and a goldmark-rendered text/html part.
func Compose(m Message, now time.Time) ([]byte, error) {
	if m.To == "" {
		return nil, errors.New("mailer: recipient is required")
	}
	if err := ValidateAddress(m.To); err != nil {
		return nil, err
	}
	if m.From != "" {
		if err := ValidateAddress(m.From); err != nil {
			return nil, err
		}
	}
	html, err := mdToHTML(m.Body)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	var head strings.Builder
	if m.From != "" {
		head.WriteString("From: " + m.From + "\r\n")
	}
	head.WriteString("To: " + m.To + "\r\n")
	head.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	head.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	head.WriteString("MIME-Version: 1.0\r\n")
	head.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary()))

	var out bytes.Buffer
	out.WriteString(head.String())

	if err := writePart(mw, "text/plain; charset=utf-8", m.Body); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html; charset=utf-8", html); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "8bit")
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(body))
	return err
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("mailer: render body: %w", err)
	}
	return buf.String(), nil
}
