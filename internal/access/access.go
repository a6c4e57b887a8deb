// Package access decides whether a user may act on a project. It is a leaf:
// callers fetch the actor and the membership rows, Evaluate makes the
// decision. It performs no I/O and is safe for concurrent use.
package access

import (
	"errors"

	"gitboard/internal/models"
)

var (
	// ErrNoRolesRequired means the caller passed an empty required role set.
	ErrNoRolesRequired = errors.New("access: required role set is empty")
	// ErrNotAMember means the actor has no membership row for the project.
	ErrNotAMember = errors.New("access: user is not a member of the project")
	// ErrInsufficientRole means the actor is a member but their role is not
	// in the required set.
	ErrInsufficientRole = errors.New("access: role does not permit this action")
	// ErrDuplicateMembership means storage returned more than one membership
	// row for the same (project, user) pair. The uniqueness invariant is
	// broken and the evaluator refuses to pick one.
	ErrDuplicateMembership = errors.New("access: duplicate membership rows for user")
)

// Decision is the outcome of an authorization. Admin privileges surface as
// named capability flags, never as a passing role check: an admin outside
// the required role set still gets ErrNotAMember or ErrInsufficientRole,
// with the capabilities filled in, and the call site proceeds only if the
// specific capability it checks covers its operation. Board deletion is the
// single operation with such a capability.
type Decision struct {
	// Role is the actor's membership role; empty when no membership row
	// exists.
	Role models.ProjectRole
	// CanDeleteBoard is held by project owners and global admins.
	CanDeleteBoard bool
	// CanBypassMembership is held by global admins only. It marks that a
	// capability-gated operation may proceed without a membership row.
	CanBypassMembership bool
}

// Evaluate answers "may this actor perform an action requiring one of the
// given roles on the project these memberships belong to". The Decision is
// meaningful even when the error is ErrNotAMember or ErrInsufficientRole:
// its capability flags are already resolved for callers that honor one.
//
// memberships must be every membership row for the (project, actor) pair,
// normally zero or one. More than one row fails with ErrDuplicateMembership.
func Evaluate(actor *models.User, memberships []models.ProjectMember, required ...models.ProjectRole) (Decision, error) {
	if len(required) == 0 {
		return Decision{}, ErrNoRolesRequired
	}
	if len(memberships) > 1 {
		return Decision{}, ErrDuplicateMembership
	}

	admin := actor != nil && actor.IsAdmin()
	decision := Decision{
		CanDeleteBoard:      admin,
		CanBypassMembership: admin,
	}

	if len(memberships) == 0 {
		return decision, ErrNotAMember
	}

	decision.Role = memberships[0].Role
	if decision.Role == models.RoleOwner {
		decision.CanDeleteBoard = true
	}

	if !roleIn(decision.Role, required) {
		return decision, ErrInsufficientRole
	}

	return decision, nil
}

func roleIn(role models.ProjectRole, set []models.ProjectRole) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
