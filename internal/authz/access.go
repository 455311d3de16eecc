// Package authz decides which partition of trip/asset/document data a
// caller may see and applies one access predicate to every individually
// addressed resource.
package authz

import (
	"github.com/haulbase/haulbase/internal/models"
)

// CanAccess is the single per-resource access predicate. It is shared by
// documents and notes so the security decision cannot drift between
// resource kinds.
func CanAccess(requesterID string, isAdmin bool, ownerID string, p models.Permissions) bool {
	if isAdmin {
		return true
	}
	if p.IsPublic {
		return true
	}
	if ownerID == requesterID {
		return true
	}
	return contains(p.CanView, requesterID) ||
		contains(p.CanEdit, requesterID) ||
		contains(p.CanDelete, requesterID)
}

// CanDelete is the narrower predicate for destructive operations: only
// the owner, an admin, or an explicit delete grant may remove a resource.
func CanDelete(requesterID string, isAdmin bool, ownerID string, p models.Permissions) bool {
	if isAdmin {
		return true
	}
	if ownerID == requesterID {
		return true
	}
	return contains(p.CanDelete, requesterID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
