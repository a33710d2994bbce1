package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TeamStatus string

const (
	TeamActive       TeamStatus = "active"
	TeamDisqualified TeamStatus = "disqualified"
)

type Team struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	EventID   uuid.UUID  `db:"event_id" json:"eventId"`
	Name      string     `db:"name" json:"name"`
	Members   Members    `db:"members" json:"members"`
	Seed      *int       `db:"seed" json:"seed,omitempty"`
	Status    TeamStatus `db:"status" json:"status"`
	GroupID   *string    `db:"group_id" json:"groupId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

func (t *Team) Disqualified() bool {
	return t.Status == TeamDisqualified
}

// Members is stored as a JSON array in a text column.
type Members []string

func (m Members) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Members) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Members{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Members", src)
	}
	if len(raw) == 0 {
		*m = Members{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(m))
}
