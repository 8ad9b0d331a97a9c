// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

const (
	// DefaultImageURL is shown for users without a profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is shown for users without a header image.
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	ImageURL       string    `gorm:"default:/static/images/default-pic.png" json:"image_url"`
	HeaderImageURL string    `gorm:"default:/static/images/warbler-hero.jpg" json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// UserSummary is the public card used in follower/following lists.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio,omitempty"`
}

// Summary returns the public card for u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL, Bio: u.Bio}
}
