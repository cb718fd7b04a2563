package processor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/web3tea/fixture-sentinel/models"
)

// TypeFixtureUpdates is the wire message type that carries fixture batches.
// Everything else is acknowledged and dropped.
const TypeFixtureUpdates = "fixture_updates"

// Schema versions with a dedicated processing path.
const (
	SchemaVersion20 = "2.0"
	SchemaVersion15 = "1.5"
	SchemaVersion10 = "1.0"
)

// wireMessage is the broker payload. Both schema generations nest the
// fixture set under payload; the enhanced schema adds detailed changes.
type wireMessage struct {
	Type          string       `json:"type"`
	SchemaVersion string       `json:"schema_version"`
	Timestamp     string       `json:"timestamp"`
	Payload       *wirePayload `json:"payload"`
}

type wirePayload struct {
	Matches         []models.Fixture        `json:"matches"`
	DetailedChanges []models.DetailedChange `json:"detailed_changes"`
	Metadata        *wireMetadata           `json:"metadata"`
}

type wireMetadata struct {
	HasChanges    bool           `json:"has_changes"`
	TotalMatches  int            `json:"total_matches"`
	ChangeSummary map[string]int `json:"change_summary"`
}

// Classification is the outcome of routing one broker message.
type Classification struct {
	// Type is the wire message type, verbatim
	Type string

	// Class is the schema path the message was routed to
	Class models.SchemaClass

	// Envelope is nil for non-fixture messages. For fixture messages whose
	// publisher flagged no changes it is present but carries no matches.
	Envelope *models.Envelope
}

// FixtureUpdate reports whether the message belongs to the sync path.
func (c *Classification) FixtureUpdate() bool {
	return c.Envelope != nil
}

// Classify decodes one broker payload and routes it by schema version.
// A missing version means the oldest schema; an unrecognized one rides the
// legacy path rather than failing closed, so newer publishers keep working.
func Classify(channel string, payload []byte) (*Classification, error) {
	var msg wireMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode broker message: %w", err)
	}

	c := &Classification{Type: msg.Type}
	if msg.Type != TypeFixtureUpdates {
		return c, nil
	}

	version := msg.SchemaVersion
	if version == "" {
		version = SchemaVersion10
	}

	env := &models.Envelope{
		BatchID:       uuid.NewString(),
		SchemaVersion: version,
		Channel:       channel,
		ReceivedAt:    time.Now().UTC(),
	}

	switch version {
	case SchemaVersion20:
		c.Class = models.SchemaEnhanced
		if msg.hasChanges() {
			env.Matches = msg.Payload.Matches
			env.DetailedChanges = msg.Payload.DetailedChanges
			env.HighPriority = HasHighPriorityChanges(env.DetailedChanges)
		}
	case SchemaVersion10, SchemaVersion15:
		c.Class = models.SchemaLegacy
		if msg.hasChanges() {
			env.Matches = msg.Payload.Matches
		}
	default:
		c.Class = models.SchemaUnknown
		if msg.hasChanges() {
			env.Matches = msg.Payload.Matches
		}
	}

	env.Class = c.Class
	c.Envelope = env
	return c, nil
}

// hasChanges follows the publisher's contract: absent metadata means the
// publisher detected nothing worth syncing.
func (m *wireMessage) hasChanges() bool {
	return m.Payload != nil && m.Payload.Metadata != nil && m.Payload.Metadata.HasChanges
}
