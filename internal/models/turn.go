package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one record of the conversation log. Records are append-only and
// always written as a (user, assistant) pair for a single input cycle.
type Turn struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role      string         `gorm:"column:role;type:text" json:"role"` // "user" | "assistant"
	Text      string         `gorm:"column:text;type:text" json:"text"`
	Seq       int64          `gorm:"column:seq;index" json:"seq"`
	Timestamp time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (Turn) TableName() string { return "turns" }
