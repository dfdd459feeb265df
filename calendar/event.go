// Package calendar turns event drafts into Google Calendar events.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gcalendar "google.golang.org/api/calendar/v3"

	"personal_content_agent/generator"
)

// ErrMissingTime is returned when a draft has no usable start or end.
var ErrMissingTime = errors.New("calendar: event start and end are required")

// resolveZone 加载 IANA 时区，失败时回退 UTC。
func resolveZone(name string) (*time.Location, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, "UTC"
	}
	return loc, name
}

func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, ErrMissingTime
	}
	if t, err := time.ParseInLocation(generator.EventTimeLayout, v, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("calendar: unrecognised datetime %q", v)
}

// ToGoogleEvent converts a draft. Times are read in the draft's timezone.
func ToGoogleEvent(d generator.EventDraft) (*gcalendar.Event, error) {
	loc, zone := resolveZone(d.Timezone)
	start, err := parseTime(d.StartDateTime, loc)
	if err != nil {
		return nil, err
	}
	end, err := parseTime(d.EndDateTime, loc)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("calendar: end %s is before start %s", d.EndDateTime, d.StartDateTime)
	}

	ev := &gcalendar.Event{
		Summary:     d.Summary,
		Location:    d.Location,
		Description: d.Description,
		ColorId:     d.ColorID,
		Start:       &gcalendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: zone},
		End:         &gcalendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: zone},
		Reminders: &gcalendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		},
	}
	for _, r := range d.Reminders {
		ev.Reminders.Overrides = append(ev.Reminders.Overrides, &gcalendar.EventReminder{
			Method:  r.Method,
			Minutes: r.Minutes,
		})
	}
	if d.ConferenceData {
		ev.ConferenceData = &gcalendar.ConferenceData{
			CreateRequest: &gcalendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcalendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
	}
	return ev, nil
}
