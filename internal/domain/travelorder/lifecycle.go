// Package travelorder holds the pure document lifecycle: state transitions,
// document numbering and field validation. It depends only on its inputs —
// no clock, no session, no storage. Callers pass the current time and the
// acting user explicitly and persist the returned decision themselves.
package travelorder

import (
	"fmt"
	"time"

	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
)

// Actor is the acting user as the lifecycle needs to see it: an identity
// plus whether the user holds the approval capability.
type Actor struct {
	ID         string
	CanApprove bool
}

// Decision is the outcome of a permitted transition: the next status and the
// approval side effects to persist with it. ApprovedBy and ApprovedAt are
// either both set (approve) or both nil (everything else) — never one
// without the other.
type Decision struct {
	Status     string
	ApprovedBy *string
	ApprovedAt *time.Time
}

// InitialStatus resolves the status a freshly created document gets:
// pending_approval when the creator submitted it directly, draft otherwise.
func InitialStatus(action Action) string {
	if action == ActionSubmit {
		return entity.StatusPendingApproval
	}
	return entity.StatusDraft
}

// Transition computes the next state for (current status, action, actor).
//
//	draft            --save-->    draft (fields updated)
//	draft            --submit-->  pending_approval
//	draft            --approve--> approved   (capability required)
//	draft            --reject-->  rejected   (capability required)
//	pending_approval --approve--> approved   (capability required)
//	pending_approval --reject-->  rejected   (capability required)
//
// approved, rejected and completed are terminal: every action on them is
// refused. Any disallowed combination returns a policy error wrapping
// domain.ErrForbidden; the document is left for the caller to keep as-is.
//
// The approval capability is checked on every approve/reject regardless of
// the current status.
func Transition(current string, action Action, actor Actor, now time.Time) (Decision, error) {
	if !entity.IsValidStatus(current) {
		return Decision{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, current)
	}

	if entity.IsTerminalStatus(current) {
		return Decision{}, fmt.Errorf("%w: %s documents can no longer be modified", domain.ErrForbidden, current)
	}

	switch action {
	case ActionApprove, ActionReject:
		return decide(action, actor, now)
	case ActionSave:
		if current != entity.StatusDraft {
			return Decision{}, fmt.Errorf("%w: only draft documents can be edited", domain.ErrForbidden)
		}
		return Decision{Status: entity.StatusDraft}, nil
	case ActionSubmit:
		if current != entity.StatusDraft {
			return Decision{}, fmt.Errorf("%w: only draft documents can be submitted", domain.ErrForbidden)
		}
		return Decision{Status: entity.StatusPendingApproval}, nil
	default:
		return Decision{}, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
}

// decide resolves an approve/reject action. Only approve records the
// deciding actor and timestamp; a rejection carries no approver identity.
func decide(action Action, actor Actor, now time.Time) (Decision, error) {
	if !actor.CanApprove {
		return Decision{}, fmt.Errorf("%w: approval capability required", domain.ErrForbidden)
	}
	if action == ActionApprove {
		approvedAt := now
		return Decision{
			Status:     entity.StatusApproved,
			ApprovedBy: &actor.ID,
			ApprovedAt: &approvedAt,
		}, nil
	}
	return Decision{Status: entity.StatusRejected}, nil
}

// EditAllowed reports whether a document may still be edited (or deleted)
// by its creator. Used to gate the edit endpoints and UI affordances.
func EditAllowed(status string) bool {
	return status == entity.StatusDraft
}
