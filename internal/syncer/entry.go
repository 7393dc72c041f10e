package syncer

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmind-backend/internal/models"
)

// State is the connectivity state of a Controller.
type State int

const (
	Offline State = iota
	OnlineIdle
	Syncing
)

func (s State) String() string {
	switch s {
	case Offline:
		return "offline"
	case OnlineIdle:
		return "online-idle"
	case Syncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// Entry is one locally held task. ClientID is assigned at creation and never
// changes; ID is set once the server has acknowledged the entry.
type Entry struct {
	ClientID    string          `json:"client_id"`
	ID          *int64          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Priority    models.Priority `json:"priority"`
	Status      models.Status   `json:"status"`
	Category    string          `json:"category"`
	Reason      *string         `json:"reason,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Synced      bool            `json:"synced"`
}

// NewEntry builds an unsynced entry with a fresh client id and the fallback
// enrichment values, which the server replaces on sync.
func NewEntry(title string, description *string) Entry {
	return Entry{
		ClientID:    uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: models.OptionalText(description),
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		Category:    models.DefaultCategory,
		CreatedAt:   time.Now().UTC(),
	}
}

// FromTask turns a server row into a synced entry.
func FromTask(t models.Task) Entry {
	e := Entry{
		ClientID: models.StringValue(t.ClientID),
		Synced:   true,
	}
	if e.ClientID == "" {
		e.ClientID = uuid.NewString()
	}
	e.absorb(t)
	return e
}

// absorb copies the server's view of the task into e.
func (e *Entry) absorb(t models.Task) {
	id := t.ID
	e.ID = &id
	e.Title = t.Title
	e.Description = t.Description
	e.Priority = t.Priority
	e.Status = t.Status
	e.Category = t.Category
	e.Reason = t.Reason
	if !t.CreatedAt.IsZero() {
		e.CreatedAt = t.CreatedAt
	}
}

// acknowledge records the server id and the fields the server derives from
// enrichment. Title and description stay local, so an edit made while the
// push was in flight is not overwritten.
func (e *Entry) acknowledge(t models.Task) {
	id := t.ID
	e.ID = &id
	e.Priority = t.Priority
	e.Status = t.Status
	e.Category = t.Category
	e.Reason = t.Reason
	if !t.CreatedAt.IsZero() {
		e.CreatedAt = t.CreatedAt
	}
	e.Synced = true
}
