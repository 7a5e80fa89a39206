package models

import "time"

// Note is an append-only comment on a task. Notes are removed together with
// their task and are never edited through the API.
type Note struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	AuthorID  uint64    `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:varchar(500);not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
