package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	gcalendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"personal_content_agent/generator"
)

// Inserter stores a converted event and returns the stored copy.
type Inserter interface {
	Insert(ctx context.Context, calendarID string, ev *gcalendar.Event) (*gcalendar.Event, error)
}

type googleInserter struct {
	svc *gcalendar.Service
}

func (g googleInserter) Insert(ctx context.Context, calendarID string, ev *gcalendar.Event) (*gcalendar.Event, error) {
	call := g.svc.Events.Insert(calendarID, ev).Context(ctx)
	if ev.ConferenceData != nil {
		call = call.ConferenceDataVersion(1)
	}
	return call.Do()
}

// Service creates events in one calendar.
type Service struct {
	calendarID string
	inserter   Inserter
	logger     *slog.Logger
}

// NewGoogleService builds a Service backed by the Calendar API.
func NewGoogleService(ctx context.Context, httpClient *http.Client, calendarID string, logger *slog.Logger) (*Service, error) {
	if httpClient == nil {
		return nil, errors.New("calendar: authorised http client is required")
	}
	svc, err := gcalendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar: service: %w", err)
	}
	return NewService(googleInserter{svc: svc}, calendarID, logger), nil
}

func NewService(inserter Inserter, calendarID string, logger *slog.Logger) *Service {
	if calendarID == "" {
		calendarID = "primary"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{calendarID: calendarID, inserter: inserter, logger: logger}
}

// Created describes a stored event.
type Created struct {
	ID       string
	HTMLLink string
	MeetLink string
}

// Create converts and inserts the draft.
func (s *Service) Create(ctx context.Context, d generator.EventDraft) (Created, error) {
	ev, err := ToGoogleEvent(d)
	if err != nil {
		return Created{}, err
	}
	out, err := s.inserter.Insert(ctx, s.calendarID, ev)
	if err != nil {
		return Created{}, fmt.Errorf("calendar insert: %w", err)
	}
	c := Created{ID: out.Id, HTMLLink: out.HtmlLink, MeetLink: out.HangoutLink}
	s.logger.Info("calendar: event created", "id", c.ID, "summary", d.Summary)
	return c, nil
}
