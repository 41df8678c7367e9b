package models

import "time"

// Folder is a node in a data room's folder tree. ParentID is nil for
// top-level folders. Cycles are rejected at creation time.
type Folder struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DataRoomID      uint      `gorm:"not null;index" json:"data_room_id"`
	DataRoom        *DataRoom `gorm:"foreignKey:DataRoomID" json:"data_room,omitempty"`
	ParentID        *uint     `gorm:"index" json:"parent_id,omitempty"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	CreatedByUserID uint      `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
