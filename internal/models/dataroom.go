package models

import "time"

// RoomStatus is the effective lifecycle phase of a data room.
//
// Only the archived marker is stored truth; active, expiring, and expired
// are always derived from ExpiresAt against the current time so a stored
// status can never go stale.
type RoomStatus string

const (
	// RoomStatusActive indicates a room is open with no imminent expiration.
	RoomStatusActive RoomStatus = "active"
	// RoomStatusExpiring indicates a room expires within the warning window.
	RoomStatusExpiring RoomStatus = "expiring"
	// RoomStatusExpired indicates a room is past its expiration but still readable.
	RoomStatusExpired RoomStatus = "expired"
	// RoomStatusArchived is the terminal, access-blocking state.
	RoomStatusArchived RoomStatus = "archived"
)

// DataRoom is a shared document workspace with an owner and an optional
// expiration. Archival is the only lifecycle state written to storage.
type DataRoom struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:120;not null" json:"name"`
	OwnerID          uint       `gorm:"not null;index" json:"owner_id"`
	Owner            *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ArchivedAt       *time.Time `gorm:"index" json:"archived_at,omitempty"`
	ArchivedByUserID *uint      `json:"archived_by_user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (DataRoom) TableName() string {
	return "data_rooms"
}

// IsArchived reports whether the room has reached its terminal state.
func (r *DataRoom) IsArchived() bool {
	return r.ArchivedAt != nil
}
