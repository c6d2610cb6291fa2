package model

import "time"

// KVEntry backs the durable key-value store. Values are opaque strings;
// the submission store layers its own serialization on top.
type KVEntry struct {
	Key       string    `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *KVEntry) TableName() string {
	return "kv_entries"
}
