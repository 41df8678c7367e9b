// Package access decides whether a principal may exercise a capability
// on a data room or folder. Evaluation is a pure query over the grant
// set: it never mutates state and never records activity.
package access

import (
	"context"

	"vaultroom/internal/models"
	"vaultroom/internal/observability"
	"vaultroom/internal/repository"
)

// Evaluator combines explicit grants, folder scoping, and the room's
// archived marker into capability decisions.
type Evaluator struct {
	grantRepo  repository.GrantRepository
	folderRepo repository.FolderRepository
}

// NewEvaluator returns a new Evaluator.
func NewEvaluator(grantRepo repository.GrantRepository, folderRepo repository.FolderRepository) *Evaluator {
	return &Evaluator{
		grantRepo:  grantRepo,
		folderRepo: folderRepo,
	}
}

// Can reports whether the principal may exercise the capability on the
// room, or on a folder within it when folderID is set.
//
// ARCHIVED blocks everything except the owner's ADMIN capability, which
// stays available so the owner can read metadata and unarchive. Owners
// hold every capability on unarchived rooms. Everyone else gets the
// union of their matching grants: room-scoped grants always match, and
// folder-scoped grants match when their scope is the target folder or
// one of its ancestors. Capabilities are additive across grants; a
// deeper scope never revokes what a broader grant allows.
func (e *Evaluator) Can(ctx context.Context, userID uint, capability models.Capability, room *models.DataRoom, folderID *uint) (bool, error) {
	allowed, err := e.can(ctx, userID, capability, room, folderID)
	if err != nil {
		return false, err
	}
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	observability.PermissionDecisions.WithLabelValues(string(capability), decision).Inc()
	return allowed, nil
}

func (e *Evaluator) can(ctx context.Context, userID uint, capability models.Capability, room *models.DataRoom, folderID *uint) (bool, error) {
	if room.IsArchived() {
		return userID == room.OwnerID && capability == models.CapabilityAdmin, nil
	}
	if userID == room.OwnerID {
		return true, nil
	}

	caps, err := e.Capabilities(ctx, userID, room, folderID)
	if err != nil {
		return false, err
	}
	return caps.Has(capability), nil
}

// Capabilities returns the union of capabilities the principal holds at
// the given scope. Owners are not special-cased here; use Can for the
// full decision.
func (e *Evaluator) Capabilities(ctx context.Context, userID uint, room *models.DataRoom, folderID *uint) (models.CapabilitySet, error) {
	grants, err := e.grantRepo.ListForUser(ctx, room.ID, userID)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return models.CapabilitySet{}, nil
	}

	scope, err := e.scopeSet(ctx, folderID)
	if err != nil {
		return nil, err
	}

	union := models.CapabilitySet{}
	for _, grant := range grants {
		if grant.FolderID == nil {
			union = union.Union(grant.Capabilities)
			continue
		}
		if folderID != nil && scope[*grant.FolderID] {
			union = union.Union(grant.Capabilities)
		}
	}
	return union, nil
}

// CanViewRoom reports whether the principal may see the room exists at
// all: the owner, or anyone holding VIEW in any scope. Folder-scoped
// members need this to navigate to their subtree even though their
// grant does not cover the room root.
func (e *Evaluator) CanViewRoom(ctx context.Context, userID uint, room *models.DataRoom) (bool, error) {
	if room.IsArchived() {
		return userID == room.OwnerID, nil
	}
	if userID == room.OwnerID {
		return true, nil
	}

	grants, err := e.grantRepo.ListForUser(ctx, room.ID, userID)
	if err != nil {
		return false, err
	}
	for _, grant := range grants {
		if grant.Capabilities.Has(models.CapabilityView) {
			return true, nil
		}
	}
	return false, nil
}

// scopeSet returns the IDs of the target folder and its ancestors.
func (e *Evaluator) scopeSet(ctx context.Context, folderID *uint) (map[uint]bool, error) {
	if folderID == nil {
		return nil, nil
	}
	path, err := e.folderRepo.PathToRoot(ctx, *folderID)
	if err != nil {
		return nil, err
	}
	scope := make(map[uint]bool, len(path))
	for _, folder := range path {
		scope[folder.ID] = true
	}
	return scope, nil
}
