package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Capability is a discrete permission on a room or folder subtree.
type Capability string

const (
	// CapabilityView allows reading room metadata and folder contents.
	CapabilityView Capability = "view"
	// CapabilityDownload allows downloading documents.
	CapabilityDownload Capability = "download"
	// CapabilityEdit allows uploading and modifying content, including
	// extending the room's expiration.
	CapabilityEdit Capability = "edit"
	// CapabilityAdmin allows grant management and request resolution.
	CapabilityAdmin Capability = "admin"
)

// capabilityRank fixes a canonical storage order for capability sets.
var capabilityRank = map[Capability]int{
	CapabilityView:     0,
	CapabilityDownload: 1,
	CapabilityEdit:     2,
	CapabilityAdmin:    3,
}

// ValidCapability reports whether c is a known capability.
func ValidCapability(c Capability) bool {
	_, ok := capabilityRank[c]
	return ok
}

// CapabilitySet is an ordered, duplicate-free set of capabilities stored
// as a comma-separated text column.
type CapabilitySet []Capability

// NewCapabilitySet normalizes the given capabilities into canonical order,
// dropping duplicates and unknown values.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	seen := make(map[Capability]bool, len(caps))
	out := make(CapabilitySet, 0, len(caps))
	for rank := 0; rank < len(capabilityRank); rank++ {
		for _, c := range caps {
			if capabilityRank[c] == rank && ValidCapability(c) && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	for _, have := range s {
		if have == c {
			return true
		}
	}
	return false
}

// Union returns a new set containing every capability in either set.
// Capabilities are additive and never revoked by a narrower scope.
func (s CapabilitySet) Union(other CapabilitySet) CapabilitySet {
	return NewCapabilitySet(append(append(CapabilitySet{}, s...), other...)...)
}

// Equal reports whether both sets contain the same capabilities.
func (s CapabilitySet) Equal(other CapabilitySet) bool {
	a, b := NewCapabilitySet(s...), NewCapabilitySet(other...)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer.
func (s CapabilitySet) Value() (driver.Value, error) {
	parts := make([]string, 0, len(s))
	for _, c := range NewCapabilitySet(s...) {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ","), nil
}

// Scan implements sql.Scanner.
func (s *CapabilitySet) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into CapabilitySet", value)
	}
	if raw == "" {
		*s = CapabilitySet{}
		return nil
	}
	caps := make([]Capability, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		caps = append(caps, Capability(strings.TrimSpace(part)))
	}
	*s = NewCapabilitySet(caps...)
	return nil
}

// Grant assigns a capability set to a principal, scoped either to a whole
// room (FolderID nil) or to a folder subtree. A principal may hold several
// grants on one room; effective capabilities are the union of every grant
// whose scope covers the target.
type Grant struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	DataRoomID      uint          `gorm:"not null;uniqueIndex:idx_grants_scope" json:"data_room_id"`
	DataRoom        *DataRoom     `gorm:"foreignKey:DataRoomID" json:"data_room,omitempty"`
	UserID          uint          `gorm:"not null;uniqueIndex:idx_grants_scope" json:"user_id"`
	User            *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FolderID        *uint         `gorm:"uniqueIndex:idx_grants_scope" json:"folder_id,omitempty"`
	Folder          *Folder       `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
	Capabilities    CapabilitySet `gorm:"type:text;not null" json:"capabilities"`
	GrantedByUserID uint          `gorm:"not null" json:"granted_by_user_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
