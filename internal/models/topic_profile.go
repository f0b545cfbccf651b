package models

import (
	"time"

	"github.com/lib/pq"
)

// TopicProfile is an optional deployment override for the topic gate: a named
// keyword set plus the rejection message shown for out-of-domain questions.
// When no active profile exists the compiled-in defaults are used.
type TopicProfile struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:text;uniqueIndex" json:"name"`
	Keywords  pq.StringArray `gorm:"column:keywords;type:text[]" json:"keywords"`
	Rejection string         `gorm:"column:rejection;type:text" json:"rejection"`
	Active    bool           `gorm:"column:active;index" json:"active"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (TopicProfile) TableName() string { return "topic_profiles" }
