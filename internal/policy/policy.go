// Package policy holds the authorization predicates consulted before
// every restricted operation. There is exactly one definition of each
// predicate; the WG must be loaded with its Users and Admins sets.
package policy

import "github.com/wghub/wg-backend/internal/domain"

// IsMember reports whether the user belongs to the WG's member set.
func IsMember(wg *domain.WG, userID uint) bool {
	if wg == nil {
		return false
	}
	for _, u := range wg.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user may act with elevated rights in the
// WG: either an explicit admin row exists or the user is the creator.
// The creator is admin-equivalent regardless of the admin set.
func IsAdmin(wg *domain.WG, userID uint) bool {
	if wg == nil {
		return false
	}
	if wg.CreatorID == userID {
		return true
	}
	for _, u := range wg.Admins {
		if u.ID == userID {
			return true
		}
	}
	return false
}
