// Package activity is the deal journal.
//
// It records two things next to the deals table in the same SQLite file:
// interactions (calls, meetings, emails logged against a deal and
// searchable with FTS5) and a feed of pipeline events such as deals
// being created or changing stage. Logging an interaction counts as
// activity on the deal, so it refreshes the deal's update time.
package activity

import (
	"fmt"
	"strings"
	"time"
)

// --- Interaction type enum ---

// InteractionType classifies a logged touchpoint.
type InteractionType string

const (
	TypeEmail      InteractionType = "email"
	TypeCall       InteractionType = "call"
	TypeMeeting    InteractionType = "meeting"
	TypeNote       InteractionType = "note"
	TypeLinkedIn   InteractionType = "linkedin"
	TypeConference InteractionType = "conference"
)

// InteractionTypes returns every type in display order.
func InteractionTypes() []InteractionType {
	return []InteractionType{TypeEmail, TypeCall, TypeMeeting, TypeNote, TypeLinkedIn, TypeConference}
}

// ParseInteractionType normalizes raw case-insensitively. Blank input
// is a note.
func ParseInteractionType(raw string) (InteractionType, error) {
	v := InteractionType(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return TypeNote, nil
	}
	for _, t := range InteractionTypes() {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid interaction type %q: must be one of: email, call, meeting, note, linkedin, conference", raw)
}

// --- Records ---

// Interaction is one touchpoint with the customer on a deal.
type Interaction struct {
	ID         int64           `json:"id"`
	DealID     string          `json:"deal_id"`
	Type       InteractionType `json:"type"`
	Summary    string          `json:"summary"`
	Details    string          `json:"details,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SearchResult is an interaction matched by full-text search.
type SearchResult struct {
	Interaction
	Organization string  `json:"organization"`
	Rank         float64 `json:"rank"`
}

// SearchOptions filters Search. The zero value searches every deal.
type SearchOptions struct {
	DealID string
	Type   InteractionType
	Limit  int
}

// Feed categories.
const (
	CategoryPipeline    = "pipeline"
	CategoryInteraction = "interaction"
)

// Entry is one line of the activity feed.
type Entry struct {
	ID          int64     `json:"id"`
	Icon        string    `json:"icon"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DealID      string    `json:"deal_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Limits applied when callers pass zero or too much.
const (
	DefaultLimit = 10
	MaxLimit     = 50
)

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Truncate shortens s to max bytes with an ellipsis, backing off to a
// rune boundary.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
