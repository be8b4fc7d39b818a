package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document types.
const (
	TypeSPD = "SPD" // Surat Perintah Dinas (travel order)
	TypeSPT = "SPT" // Surat Perintah Tugas (assignment order)
)

// Document statuses.
const (
	StatusDraft           = "draft"            // editable, not yet submitted
	StatusPendingApproval = "pending_approval" // submitted, awaiting a decision
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusCompleted       = "completed" // reserved; no action currently transitions into it
)

var validStatuses = map[string]bool{
	StatusDraft:           true,
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusRejected:        true,
	StatusCompleted:       true,
}

// Terminal statuses refuse every further update.
var terminalStatuses = map[string]bool{
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCompleted: true,
}

// IsValidStatus reports whether s is one of the defined document statuses.
func IsValidStatus(s string) bool {
	return validStatuses[s]
}

// IsTerminalStatus reports whether s admits no further transitions.
func IsTerminalStatus(s string) bool {
	return terminalStatuses[s]
}

// IsValidDocumentType reports whether t is SPD or SPT.
func IsValidDocumentType(t string) bool {
	return t == TypeSPD || t == TypeSPT
}

// TravelOrder is an official travel (SPD) or assignment (SPT) document.
//
// Invariants:
//   - DocumentNumber is unique and never reassigned.
//   - DurationDays always equals (EndDate - StartDate in days) + 1.
//   - ApprovedBy and ApprovedAt are both set or both unset.
//   - Only draft documents may be edited or deleted.
type TravelOrder struct {
	ID             string
	DocumentNumber string // {type}/{seq:3}/BAPPERIDA/{month:2}/{year}
	DocumentType   string // SPD | SPT
	EmployeeName   string
	EmployeeNIP    string
	Position       string
	Destination    string
	Purpose        string
	StartDate      time.Time // date only; time part is zero
	EndDate        time.Time
	DurationDays   int
	Budget         *decimal.Decimal // optional, NUMERIC(15,2), never negative
	Status         string
	Notes          string
	CreatedBy      string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Read-model fields joined from users; empty on writes.
	CreatorName  string
	ApproverName string
}
