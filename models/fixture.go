package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FixtureStatus is the lifecycle state of a fixture as reported by the feed.
type FixtureStatus string

const (
	StatusScheduled FixtureStatus = "scheduled"
	StatusPostponed FixtureStatus = "postponed"
	StatusCancelled FixtureStatus = "cancelled"
)

// Fixture is a single match as delivered by the league feed.
type Fixture struct {
	// ID is the feed's stable identifier for the fixture. It never changes
	// across re-fetches; every other field may.
	ID string `json:"id"`

	// MatchNumber is the human-facing match number printed on referee reports
	MatchNumber string `json:"match_number,omitempty"`

	// HomeTeam is the name of the home team
	HomeTeam string `json:"home_team"`

	// AwayTeam is the name of the away team
	AwayTeam string `json:"away_team"`

	// Venue is the ground the fixture is played at
	Venue string `json:"venue,omitempty"`

	// Kickoff is the scheduled start in the feed's wire encoding
	Kickoff WireTime `json:"kickoff"`

	// Competition is the league or cup the fixture belongs to
	Competition string `json:"competition,omitempty"`

	// Status is the feed's lifecycle state; absent means scheduled
	Status FixtureStatus `json:"status,omitempty"`

	// Officials are the referees and assistants appointed to the fixture
	Officials []Official `json:"officials,omitempty"`

	// TeamContacts are the contact persons registered for both teams
	TeamContacts []TeamContact `json:"team_contacts,omitempty"`
}

// Cancelled reports whether the feed has withdrawn the fixture.
func (f *Fixture) Cancelled() bool {
	return f.Status == StatusCancelled
}

// Title is the calendar-facing name of the fixture.
func (f *Fixture) Title() string {
	return f.HomeTeam + " - " + f.AwayTeam
}

// Official is a match official appointment.
type Official struct {
	Role    string `json:"role,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Postal  string `json:"postal_code,omitempty"`
	City    string `json:"city,omitempty"`
}

// TeamContact is a contact person registered for one of the teams.
type TeamContact struct {
	Team   string `json:"team"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
}

const (
	wireTimePrefix = "/Date("
	wireTimeSuffix = ")/"
)

// WireTime is the feed's timestamp encoding: an epoch-milliseconds value
// wrapped in a /Date(...)/ marker, optionally followed by a zone offset
// which is ignored because the epoch is already UTC.
type WireTime string

// Time decodes the wire value. The zero value and malformed values return
// an error; callers skip the fixture rather than aborting the batch.
func (w WireTime) Time() (time.Time, error) {
	s := string(w)
	if !strings.HasPrefix(s, wireTimePrefix) || !strings.HasSuffix(s, wireTimeSuffix) {
		return time.Time{}, fmt.Errorf("malformed wire timestamp: %q", s)
	}
	inner := s[len(wireTimePrefix) : len(s)-len(wireTimeSuffix)]

	// Some sibling feeds append a +hhmm offset after the epoch.
	if len(inner) > 1 {
		if idx := strings.IndexAny(inner[1:], "+-"); idx >= 0 {
			inner = inner[:idx+1]
		}
	}

	ms, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed wire timestamp: %q", s)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// NewWireTime encodes t in the feed's wire format.
func NewWireTime(t time.Time) WireTime {
	return WireTime(wireTimePrefix + strconv.FormatInt(t.UnixMilli(), 10) + wireTimeSuffix)
}
