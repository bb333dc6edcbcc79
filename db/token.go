package db

import "time"

// Entry is one persisted key-value pair of the session store.
type Entry struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name regardless of GORM's pluralization rules.
func (Entry) TableName() string { return "entries" }
