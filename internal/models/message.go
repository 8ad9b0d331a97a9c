package models

import "time"

// MaxMessageLength is the longest text a message may carry.
const MaxMessageLength = 140

// Message is a short text post owned by exactly one user.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Timestamp time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
	// Liked is computed per viewer and never persisted.
	Liked bool `gorm:"-" json:"liked"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}
