package lifecycle

import (
	"github.com/railwatch/railwatch-go/internal/errors"
	"github.com/railwatch/railwatch-go/internal/model"
	"github.com/railwatch/railwatch-go/internal/session"
)

// Transition identifies a lifecycle operation on a defect record.
type Transition string

const (
	TransitionResolve    Transition = "resolve"
	TransitionReopen     Transition = "reopen"
	TransitionDelete     Transition = "delete"
	TransitionBulkDelete Transition = "bulk_delete"
)

// transitionRule captures the permitted-roles set and precondition for one
// transition. A nil from set means any current status is acceptable.
type transitionRule struct {
	roles map[session.Role]bool
	from  map[model.Status]bool
}

var transitionTable = map[Transition]transitionRule{
	TransitionResolve: {
		roles: map[session.Role]bool{session.RoleAdmin: true, session.RoleStationMaster: true},
		from:  map[model.Status]bool{model.StatusOpen: true},
	},
	TransitionReopen: {
		roles: map[session.Role]bool{session.RoleAdmin: true},
		from:  map[model.Status]bool{model.StatusResolved: true},
	},
	TransitionDelete: {
		roles: map[session.Role]bool{session.RoleAdmin: true},
	},
	TransitionBulkDelete: {
		roles: map[session.Role]bool{session.RoleAdmin: true},
	},
}

// CanTransition checks a proposed transition against the permitted-transition
// table. It returns nil when the role may perform the transition and the
// record's current status satisfies its precondition; otherwise an
// authorization or state error describing the rejection. The check runs
// before any network dispatch; the server re-validates independently.
func CanTransition(role session.Role, current model.Status, t Transition) error {
	rule, ok := transitionTable[t]
	if !ok {
		return errors.Newf("unknown transition %q", t).
			Component("lifecycle").
			Category(errors.CategoryValidation).
			Build()
	}

	if !rule.roles[role] {
		return errors.Newf("role %s is not permitted to %s defects", role, t).
			Component("lifecycle").
			Category(errors.CategoryAuthorization).
			Context("role", string(role)).
			Context("transition", string(t)).
			Build()
	}

	if rule.from != nil && !rule.from[current] {
		return errors.Newf("cannot %s a defect in status %s", t, current).
			Component("lifecycle").
			Category(errors.CategoryState).
			Context("status", string(current)).
			Context("transition", string(t)).
			Build()
	}

	return nil
}

// FallbackMessage returns the generic operator-facing failure text for a
// transition, used when the server supplies no error detail.
func FallbackMessage(t Transition) string {
	switch t {
	case TransitionResolve:
		return "Failed to mark defect as resolved"
	case TransitionReopen:
		return "Failed to reopen defect"
	case TransitionDelete:
		return "Failed to delete defect"
	case TransitionBulkDelete:
		return "Failed to delete defects"
	default:
		return "Operation failed"
	}
}
