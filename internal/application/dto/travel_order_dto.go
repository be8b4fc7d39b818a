package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/travelorder"
)

// TravelOrderRequest is the body for both create and update. Action selects
// the lifecycle step ("save", "submit", "approve", "reject"); empty means
// save. duration_days is deliberately absent — the server always derives it.
type TravelOrderRequest struct {
	DocumentType string           `json:"document_type"`
	EmployeeName string           `json:"employee_name"`
	EmployeeNIP  string           `json:"employee_nip"`
	Position     string           `json:"position"`
	Destination  string           `json:"destination"`
	Purpose      string           `json:"purpose"`
	StartDate    string           `json:"start_date"` // YYYY-MM-DD
	EndDate      string           `json:"end_date"`   // YYYY-MM-DD
	Budget       *decimal.Decimal `json:"budget,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Action       string           `json:"action,omitempty"`
}

// Input converts the request into the lifecycle's validation input.
func (r TravelOrderRequest) Input() travelorder.Input {
	return travelorder.Input{
		DocumentType: r.DocumentType,
		EmployeeName: r.EmployeeName,
		EmployeeNIP:  r.EmployeeNIP,
		Position:     r.Position,
		Destination:  r.Destination,
		Purpose:      r.Purpose,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Budget:       r.Budget,
		Notes:        r.Notes,
	}
}

// TravelOrderResponse is the document read model.
type TravelOrderResponse struct {
	ID             string           `json:"id"`
	DocumentNumber string           `json:"document_number"`
	DocumentType   string           `json:"document_type"`
	EmployeeName   string           `json:"employee_name"`
	EmployeeNIP    string           `json:"employee_nip"`
	Position       string           `json:"position"`
	Destination    string           `json:"destination"`
	Purpose        string           `json:"purpose"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	DurationDays   int              `json:"duration_days"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	CreatedBy      string           `json:"created_by"`
	CreatorName    string           `json:"creator_name,omitempty"`
	ApprovedBy     *string          `json:"approved_by,omitempty"`
	ApproverName   string           `json:"approver_name,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
	EditAllowed    bool             `json:"edit_allowed"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TravelOrderMutationResponse wraps a mutated document with the
// action-dependent success message shown to the user.
type TravelOrderMutationResponse struct {
	Message string              `json:"message"`
	Data    TravelOrderResponse `json:"data"`
}

// TravelOrderListResponse newest-first page of documents.
type TravelOrderListResponse struct {
	Items []TravelOrderResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// TravelOrderStatsResponse document counts per status.
type TravelOrderStatsResponse struct {
	Total           int `json:"total"`
	Draft           int `json:"draft"`
	PendingApproval int `json:"pending_approval"`
	Approved        int `json:"approved"`
	Rejected        int `json:"rejected"`
	Completed       int `json:"completed"`
}

// ToTravelOrderResponse maps the entity to its read model.
func ToTravelOrderResponse(o *entity.TravelOrder) TravelOrderResponse {
	return TravelOrderResponse{
		ID:             o.ID,
		DocumentNumber: o.DocumentNumber,
		DocumentType:   o.DocumentType,
		EmployeeName:   o.EmployeeName,
		EmployeeNIP:    o.EmployeeNIP,
		Position:       o.Position,
		Destination:    o.Destination,
		Purpose:        o.Purpose,
		StartDate:      o.StartDate.Format(travelorder.DateFormat),
		EndDate:        o.EndDate.Format(travelorder.DateFormat),
		DurationDays:   o.DurationDays,
		Budget:         o.Budget,
		Status:         o.Status,
		Notes:          o.Notes,
		CreatedBy:      o.CreatedBy,
		CreatorName:    o.CreatorName,
		ApprovedBy:     o.ApprovedBy,
		ApproverName:   o.ApproverName,
		ApprovedAt:     o.ApprovedAt,
		EditAllowed:    travelorder.EditAllowed(o.Status),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
