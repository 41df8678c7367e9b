package models

import "time"

// AccessRequestStatus defines lifecycle states for access requests.
// PENDING is the only non-terminal state; a request transitions exactly
// once to APPROVED, DENIED, or WITHDRAWN.
type AccessRequestStatus string

const (
	// AccessRequestStatusPending indicates the request is awaiting review.
	AccessRequestStatusPending AccessRequestStatus = "pending"
	// AccessRequestStatusApproved indicates an admin granted the request.
	AccessRequestStatusApproved AccessRequestStatus = "approved"
	// AccessRequestStatusDenied indicates an admin declined the request.
	AccessRequestStatusDenied AccessRequestStatus = "denied"
	// AccessRequestStatusWithdrawn indicates the requester retracted it.
	AccessRequestStatusWithdrawn AccessRequestStatus = "withdrawn"
)

// Terminal reports whether the status is a terminal state.
func (s AccessRequestStatus) Terminal() bool {
	return s == AccessRequestStatusApproved ||
		s == AccessRequestStatusDenied ||
		s == AccessRequestStatusWithdrawn
}

// AccessRequest is a requester-initiated, admin-resolved petition for a
// grant on a room or folder subtree. At most one PENDING request may
// exist per (requester, room, folder) tuple; the storage layer enforces
// this with a partial unique index in addition to the application check.
type AccessRequest struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	DataRoomID       uint                `gorm:"not null;index" json:"data_room_id"`
	DataRoom         *DataRoom           `gorm:"foreignKey:DataRoomID" json:"data_room,omitempty"`
	FolderID         *uint               `json:"folder_id,omitempty"`
	Folder           *Folder             `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
	RequesterID      uint                `gorm:"not null;index" json:"requester_id"`
	Requester        *User               `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Reason           string              `gorm:"type:text" json:"reason"`
	Status           AccessRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResolvedByUserID *uint               `json:"resolved_by_user_id,omitempty"`
	ResolvedByUser   *User               `gorm:"foreignKey:ResolvedByUserID" json:"resolved_by_user,omitempty"`
	ResolutionNote   string              `gorm:"type:text" json:"resolution_note"`
	ResolvedAt       *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
