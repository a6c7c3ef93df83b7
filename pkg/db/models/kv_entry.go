package models

import "time"

// KVEntry is one persisted storefront key for a browser session.
type KVEntry struct {
	SessionID string    `gorm:"column:session_id;type:varchar(64);primaryKey"`
	Key       string    `gorm:"column:kv_key;type:varchar(64);primaryKey"`
	Value     string    `gorm:"column:kv_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (KVEntry) TableName() string { return "storefront_kv" }
