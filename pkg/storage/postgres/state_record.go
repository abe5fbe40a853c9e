package postgres

import "time"

// StateRecord is one persisted status map, JSON-encoded, keyed by the
// tracker's state key ("limit", "speed").
type StateRecord struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name for GORM.
func (StateRecord) TableName() string {
	return "watch_state"
}
