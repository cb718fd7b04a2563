package models

import "time"

// SchemaClass buckets the envelope schema versions the classifier understands.
type SchemaClass string

const (
	SchemaEnhanced SchemaClass = "enhanced" // 2.0: matches + detailed changes + metadata
	SchemaLegacy   SchemaClass = "legacy"   // 1.0 / 1.5: flat match list
	SchemaUnknown  SchemaClass = "unknown"  // future versions, parsed on the legacy path
)

// ChangePriority levels as published by the upstream change detector.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Change categories that warrant immediate attention regardless of the
// publisher's own priority level.
const (
	CategoryTimeChange      = "time_change"
	CategoryDateChange      = "date_change"
	CategoryVenueChange     = "venue_change"
	CategoryOfficialsChange = "officials_change"
)

// DetailedChange describes one field-level difference the publisher detected
// between consecutive feed snapshots. Advisory: it steers alerting and
// logging, never what gets written to the calendar.
type DetailedChange struct {
	// MatchID is the fixture the change belongs to
	MatchID string `json:"match_id,omitempty"`

	// Field is the changed field name in the publisher's vocabulary
	Field string `json:"field,omitempty"`

	// Category is the publisher's classification, e.g. time_change
	Category string `json:"category,omitempty"`

	// Priority is the publisher's severity: high, medium or low
	Priority string `json:"priority,omitempty"`

	// Previous and Current carry the field values around the change
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current,omitempty"`
}

// Envelope is a normalized fixture-update message, produced by the
// classifier from any of the supported wire schemas.
type Envelope struct {
	// BatchID is a locally assigned correlation id, not part of the wire format
	BatchID string `json:"batch_id"`

	// SchemaVersion is the version string the publisher sent, verbatim
	SchemaVersion string `json:"schema_version"`

	// Class is the processing path the version was routed to
	Class SchemaClass `json:"class"`

	// Channel is the broker channel the message arrived on
	Channel string `json:"channel,omitempty"`

	// ReceivedAt is when the subscriber read the message
	ReceivedAt time.Time `json:"received_at"`

	// Matches is the full fixture set carried by the message
	Matches []Fixture `json:"matches"`

	// DetailedChanges is only populated by the enhanced schema
	DetailedChanges []DetailedChange `json:"detailed_changes,omitempty"`

	// HighPriority marks envelopes whose changes demand prompt handling
	HighPriority bool `json:"high_priority"`
}
