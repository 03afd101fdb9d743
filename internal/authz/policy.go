// Package authz holds the authorization policy for the shelter API. The
// policy is a pure function over (subject, action, resource, ownership) so it
// can be evaluated ahead of every repository call and tested without any
// transport or storage in place.
package authz

import (
	"github.com/havenpaws/shelter-api/internal/models"
	appErrors "github.com/havenpaws/shelter-api/pkg/errors"
)

// Action enumerates the operations subject to policy evaluation.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource enumerates the entity classes subject to policy evaluation.
type Resource string

const (
	ResourcePet           Resource = "pet"
	ResourceDonation      Resource = "donation"
	ResourceAdoption      Resource = "adoption"
	ResourceMedicalRecord Resource = "medical_record"
	ResourceUser          Resource = "user"
)

// Subject is the authenticated identity a request acts as. It is resolved
// once at the session boundary and passed by value; the policy never reads
// ambient state.
type Subject struct {
	UserID string
	Role   models.UserRole
}

// Effect is the outcome of a policy decision.
type Effect int

const (
	// Allow permits the operation.
	Allow Effect = iota
	// DenyForbidden rejects the operation because the role lacks the
	// capability entirely.
	DenyForbidden
	// DenyAsMissing rejects the operation because the target row is not
	// owned by the subject; it must surface exactly like a missing row so
	// existence is not leaked.
	DenyAsMissing
)

// Decide maps (role, action, resource, ownership) to an effect. owner is the
// user_id recorded on the target row; nil means the row is unowned or the
// operation has no target row (create, list). Decide is total: every input
// combination yields exactly one effect.
func Decide(sub Subject, action Action, res Resource, owner *string) Effect {
	switch sub.Role {
	case models.RoleAdmin:
		return Allow
	case models.RoleEmployee:
		return decideEmployee(sub, action, res, owner)
	default:
		return DenyForbidden
	}
}

func decideEmployee(sub Subject, action Action, res Resource, owner *string) Effect {
	switch res {
	case ResourcePet, ResourceMedicalRecord:
		if action == ActionRead {
			return Allow
		}
		return DenyForbidden
	case ResourceDonation, ResourceAdoption:
		switch action {
		case ActionCreate:
			return Allow
		case ActionRead, ActionUpdate:
			if owner == nil {
				// Listing: the repository scopes the query to the
				// subject's own rows.
				return Allow
			}
			if *owner == sub.UserID {
				return Allow
			}
			return DenyAsMissing
		default:
			return DenyForbidden
		}
	default:
		return DenyForbidden
	}
}

// Err translates a deny effect into the caller-visible error. Allow yields
// nil.
func Err(effect Effect) error {
	switch effect {
	case Allow:
		return nil
	case DenyAsMissing:
		return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "role does not permit this operation")
	}
}

// Check is a convenience wrapper combining Decide and Err.
func Check(sub Subject, action Action, res Resource, owner *string) error {
	return Err(Decide(sub, action, res, owner))
}
