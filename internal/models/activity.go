package models

import "time"

// ActivityAction identifies what an actor did.
type ActivityAction string

const (
	// ActivityActionUpload records a document upload.
	ActivityActionUpload ActivityAction = "upload"
	// ActivityActionCreate records creation of a room or folder.
	ActivityActionCreate ActivityAction = "create"
	// ActivityActionAnswer records a Q&A answer inside a room.
	ActivityActionAnswer ActivityAction = "answer"
	// ActivityActionInvite records a grant issued to a principal.
	ActivityActionInvite ActivityAction = "invite"
	// ActivityActionRevoke records a grant being revoked.
	ActivityActionRevoke ActivityAction = "revoke"
	// ActivityActionView records a successful view or download.
	ActivityActionView ActivityAction = "view"
	// ActivityActionExtend records an expiration extension.
	ActivityActionExtend ActivityAction = "extend"
	// ActivityActionArchive records a room reaching its terminal state.
	ActivityActionArchive ActivityAction = "archive"
	// ActivityActionRequest records an access request submission.
	ActivityActionRequest ActivityAction = "request"
	// ActivityActionResolve records an access request resolution.
	ActivityActionResolve ActivityAction = "resolve"
)

// ActivityRecord is an immutable audit trail entry. Rows are append-only:
// nothing in this service updates or deletes them after creation.
type ActivityRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ActorID      uint           `gorm:"not null;index" json:"actor_id"`
	Actor        *User          `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action       ActivityAction `gorm:"type:varchar(20);not null" json:"action"`
	ResourceKind string         `gorm:"size:40;not null" json:"resource_kind"`
	DataRoomID   *uint          `gorm:"index" json:"data_room_id,omitempty"`
	Description  string         `gorm:"type:text" json:"description"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}
