// Package journal provides the append-only structured record stream the
// core writes for observability. Observers receive records as they are
// appended; the journal itself never drives presentation.
package journal

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a journal record.
type Kind string

const (
	KindCycle        Kind = "cycle"         // Pipeline stage progress.
	KindOutcome      Kind = "outcome"       // Applied outcome summary.
	KindTrigger      Kind = "trigger"       // Trigger accepted or rejected.
	KindRelationship Kind = "relationship"  // Relationship state change.
	KindUnknownToken Kind = "unknown_token" // Unresolved DSL token.
	KindWarning      Kind = "warning"       // Recovered degradation, e.g. an empty pick.
	KindDay          Kind = "day"           // Day-advance tick.
)

// Record is one structured journal entry.
type Record struct {
	ID      string `json:"id"`
	At      string `json:"at"`       // Wall-clock append time, RFC 3339.
	Day     string `json:"day"`      // Simulation date, if one applies.
	Kind    Kind   `json:"kind"`
	EventID int    `json:"event_id,omitempty"` // Originating event, if any.
	Token   string `json:"token,omitempty"`    // Unresolved token, for unknown_token.
	Message string `json:"message"`
}

// Observer receives records as they are appended.
type Observer func(Record)

// Journal accumulates records and fans them out to observers. Single
// threaded, like the rest of the core; the host serializes access.
type Journal struct {
	records   []Record
	observers []Observer
	day       string
}

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// Subscribe registers an observer for future records.
func (j *Journal) Subscribe(o Observer) {
	j.observers = append(j.observers, o)
}

// SetDay updates the simulation date stamped onto subsequent records.
func (j *Journal) SetDay(day string) {
	j.day = day
}

// Append records an entry, filling in id, timestamp, and current day.
func (j *Journal) Append(rec Record) Record {
	rec.ID = uuid.NewString()
	rec.At = time.Now().UTC().Format(time.RFC3339)
	if rec.Day == "" {
		rec.Day = j.day
	}
	j.records = append(j.records, rec)
	for _, o := range j.observers {
		o(rec)
	}
	return rec
}

// Cycle appends a pipeline progress record.
func (j *Journal) Cycle(eventID int, message string) {
	j.Append(Record{Kind: KindCycle, EventID: eventID, Message: message})
}

// UnknownToken appends an unresolved-token warning and mirrors it to slog.
// This is the only silently-recovered failure class; every occurrence is
// logged with the originating event id and the token.
func (j *Journal) UnknownToken(eventID int, token, message string) {
	j.Append(Record{Kind: KindUnknownToken, EventID: eventID, Token: token, Message: message})
	slog.Warn("unknown token", "event_id", eventID, "token", token, "detail", message)
}

// Warning appends a recovered-degradation warning and mirrors it to slog.
func (j *Journal) Warning(eventID int, token, message string) {
	j.Append(Record{Kind: KindWarning, EventID: eventID, Token: token, Message: message})
	slog.Warn(message, "event_id", eventID, "token", token)
}

// Records returns a copy of all appended records, oldest first.
func (j *Journal) Records() []Record {
	out := make([]Record, len(j.records))
	copy(out, j.records)
	return out
}

// Tail returns up to n most recent records, oldest first.
func (j *Journal) Tail(n int) []Record {
	if n <= 0 || n >= len(j.records) {
		return j.Records()
	}
	out := make([]Record, n)
	copy(out, j.records[len(j.records)-n:])
	return out
}

// Len returns the number of appended records.
func (j *Journal) Len() int {
	return len(j.records)
}
