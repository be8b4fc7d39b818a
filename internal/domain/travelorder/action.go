package travelorder

import (
	"fmt"

	"github.com/bapperida/siperjadin/internal/domain"
)

// Action is what the caller asked the lifecycle to do with a document.
// The untyped action strings arriving over HTTP are parsed exactly once,
// at the edge, via ParseAction.
type Action string

const (
	ActionSave    Action = "save"    // persist fields without changing the workflow
	ActionSubmit  Action = "submit"  // hand the document to the approval queue
	ActionApprove Action = "approve" // approval decision, requires capability
	ActionReject  Action = "reject"  // rejection decision, requires capability
)

// ParseAction maps a request action string to a typed Action.
// An empty string and "update" are treated as save (the form's default
// buttons send either). Anything else is a distinct, reported rejection,
// never silently ignored.
func ParseAction(s string) (Action, error) {
	switch s {
	case "", "save", "update":
		return ActionSave, nil
	case "submit":
		return ActionSubmit, nil
	case "approve":
		return ActionApprove, nil
	case "reject":
		return ActionReject, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, s)
	}
}
