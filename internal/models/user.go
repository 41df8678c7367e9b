// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a principal reference owned by the external identity subsystem.
// This service never mutates users; rows are synced in by the identity
// provider and read here to resolve owners, requesters, and reviewers.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
