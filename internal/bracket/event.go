package bracket

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type EventMode string

const (
	ModeSingleElimination EventMode = "single_elimination"
	ModeDoubleElimination EventMode = "double_elimination"
	ModeGroup             EventMode = "group"
)

func (m EventMode) Valid() bool {
	switch m {
	case ModeSingleElimination, ModeDoubleElimination, ModeGroup:
		return true
	}
	return false
}

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

// KnockoutMode selects the elimination format that follows a group phase.
type KnockoutMode string

const (
	KnockoutSingle KnockoutMode = "single_elimination"
	KnockoutDouble KnockoutMode = "double_elimination"
)

func (m KnockoutMode) Valid() bool {
	return m == KnockoutSingle || m == KnockoutDouble
}

const (
	MinTables          = 1
	MaxTables          = 20
	MinGroups          = 2
	MaxGroups          = 16
	MinAdvancePerGroup = 1
	MaxAdvancePerGroup = 8

	DefaultAdvancePerGroup = 2
)

type Event struct {
	ID                   uuid.UUID     `db:"id" json:"id"`
	Name                 string        `db:"name" json:"name"`
	Date                 *string       `db:"date" json:"date,omitempty"`
	Location             *string       `db:"location" json:"location,omitempty"`
	Mode                 EventMode     `db:"mode" json:"mode"`
	Status               EventStatus   `db:"status" json:"status"`
	TableCount           int           `db:"table_count" json:"tableCount"`
	GroupCount           *int          `db:"group_count" json:"groupCount,omitempty"`
	TeamsAdvancePerGroup *int          `db:"teams_advance_per_group" json:"teamsAdvancePerGroup,omitempty"`
	KnockoutMode         *KnockoutMode `db:"knockout_mode" json:"knockoutMode,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updatedAt"`
}

// AdvancePerGroup falls back to the default when the event leaves it unset.
func (e *Event) AdvancePerGroup() int {
	if e.TeamsAdvancePerGroup == nil || *e.TeamsAdvancePerGroup < MinAdvancePerGroup {
		return DefaultAdvancePerGroup
	}
	return *e.TeamsAdvancePerGroup
}

func (e *Event) Knockout() KnockoutMode {
	if e.KnockoutMode == nil || !e.KnockoutMode.Valid() {
		return KnockoutSingle
	}
	return *e.KnockoutMode
}

// LogEntry is one append-only record of a graph mutation for an event.
type LogEntry struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	EventID   uuid.UUID      `db:"event_id" json:"eventId"`
	Action    string         `db:"action" json:"action"`
	Payload   types.JSONText `db:"payload" json:"payload"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}
