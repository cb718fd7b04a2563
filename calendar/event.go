package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/web3tea/fixture-sentinel/models"
)

// Private metadata keys stamped on every managed event. FindEvent and the
// orphan sweep match on these, so they are part of the wire contract with
// the destination.
const (
	PropFixtureID   = "fixtureId"
	PropSyncTag     = "syncTag"
	PropContentHash = "contentHash"
)

// Event is a destination calendar event in provider-neutral form.
type Event struct {
	// ID is the provider's opaque event id; empty until inserted
	ID string `json:"id,omitempty"`

	Summary     string    `json:"summary"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	// Reminders replace the calendar's defaults for this event
	Reminders []Reminder `json:"reminders,omitempty"`

	// Private is per-event metadata invisible to attendees; carries the
	// fixture id, sync tag and content hash
	Private map[string]string `json:"private,omitempty"`
}

// Reminder is a notification override on a managed event.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// FixtureID returns the fixture this event is managed for, or "" for
// events created outside the sync.
func (e *Event) FixtureID() string {
	return e.Private[PropFixtureID]
}

// ContentHash returns the fixture content digest stamped at the last write.
func (e *Event) ContentHash() string {
	return e.Private[PropContentHash]
}

// buildEvent renders a fixture into its destination event. The caller has
// already parsed the kickoff; an unparseable one never reaches this point.
func (s *Syncer) buildEvent(f *models.Fixture, kickoff time.Time, hash string) *Event {
	return &Event{
		Summary:     f.Title(),
		Location:    f.Venue,
		Description: s.buildDescription(f),
		Start:       kickoff,
		End:         kickoff.Add(s.eventDuration),
		Reminders: []Reminder{
			{Method: "popup", Minutes: s.reminderMinutes},
		},
		Private: map[string]string{
			PropFixtureID:   f.ID,
			PropSyncTag:     s.syncTag,
			PropContentHash: hash,
		},
	}
}

func (s *Syncer) buildDescription(f *models.Fixture) string {
	var sb strings.Builder

	if f.MatchNumber != "" {
		sb.WriteString("Match ")
		sb.WriteString(f.MatchNumber)
		sb.WriteString("\n")
	}
	if f.Competition != "" {
		sb.WriteString(f.Competition)
		sb.WriteString("\n")
	}

	if len(f.Officials) > 0 {
		sb.WriteString("\nOfficials:\n")
		for _, o := range f.Officials {
			if o.Role != "" {
				sb.WriteString(o.Role)
				sb.WriteString(": ")
			}
			sb.WriteString(o.Name)
			sb.WriteString("\n")
			writeContactLine(&sb, o.Phone, o.Email)
		}
	}

	if len(f.TeamContacts) > 0 {
		sb.WriteString("\nTeam contacts:\n")
		for _, c := range f.TeamContacts {
			sb.WriteString(c.Team)
			sb.WriteString(": ")
			sb.WriteString(c.Name)
			sb.WriteString("\n")
			phone := c.Mobile
			if phone == "" {
				phone = c.Phone
			}
			writeContactLine(&sb, phone, c.Email)
		}
	}

	if s.detailsURL != "" {
		sb.WriteString("\nDetails: ")
		sb.WriteString(fmt.Sprintf(s.detailsURL, f.ID))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func writeContactLine(sb *strings.Builder, phone, email string) {
	if phone == "" && email == "" {
		return
	}
	parts := make([]string, 0, 2)
	if phone != "" {
		parts = append(parts, "Phone: "+phone)
	}
	if email != "" {
		parts = append(parts, "Email: "+email)
	}
	sb.WriteString("  ")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString("\n")
}
