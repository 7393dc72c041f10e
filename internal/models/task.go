package models

import (
	"errors"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

const DefaultCategory = "general"

// Task is the only persisted entity.
type Task struct {
	ID          int64     `json:"id" db:"id"`
	ClientID    *string   `json:"client_id,omitempty" db:"client_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Priority    Priority  `json:"priority" db:"priority"`
	Status      Status    `json:"status" db:"status"`
	Category    string    `json:"category" db:"category"`
	Reason      *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TaskInput is what the classifier sees: title and description only.
type TaskInput struct {
	Title       string
	Description *string
}

// Fields is a partial update. Nil pointers are left untouched; a pointer to
// an empty Description or Reason clears the column.
type Fields struct {
	Title       *string
	Description *string
	Priority    *Priority
	Status      *Status
	Category    *string
	Reason      *string
}

func (f Fields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.Priority == nil &&
		f.Status == nil && f.Category == nil && f.Reason == nil
}

// Enrichment is the classifier's verdict for one task.
type Enrichment struct {
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
	Category string   `json:"category"`
	Reason   *string  `json:"reason,omitempty"`
	Fallback bool     `json:"-"`
}

// FallbackEnrichment is returned whenever the model is unusable.
func FallbackEnrichment() Enrichment {
	return Enrichment{
		Priority: PriorityMedium,
		Status:   StatusPending,
		Category: DefaultCategory,
		Fallback: true,
	}
}

// Suggestion is a candidate task proposed from free text. It is never persisted
// by itself.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParsePriority reports whether s names a known priority.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// ParseStatus reports whether s names a known status. "in progress" and
// "in_progress" are accepted as spellings of in-progress.
func ParseStatus(s string) (Status, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "-", "_", "-").Replace(v)
	switch st := Status(v); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, true
	}
	return "", false
}

func NormalizePriority(s string) Priority {
	if p, ok := ParsePriority(s); ok {
		return p
	}
	return PriorityMedium
}

func NormalizeStatus(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusPending
}

func NormalizeCategory(s string) string {
	c := strings.ToLower(strings.TrimSpace(s))
	if c == "" {
		return DefaultCategory
	}
	return c
}

// OptionalText trims s and returns nil when nothing is left.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ErrNotFound is returned by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")
