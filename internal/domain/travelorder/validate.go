package travelorder

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
)

// DateFormat is the wire format for start_date and end_date.
const DateFormat = "2006-01-02"

// Input carries the submitted field values, dates still as strings.
// duration_days is never accepted from the client; it is always derived
// here from the parsed dates.
type Input struct {
	DocumentType string
	EmployeeName string
	EmployeeNIP  string
	Position     string
	Destination  string
	Purpose      string
	StartDate    string
	EndDate      string
	Budget       *decimal.Decimal
	Notes        string
}

// Validated is the outcome of a successful validation: typed dates and the
// derived duration, ready to be copied onto the entity.
type Validated struct {
	DocumentType string
	EmployeeName string
	EmployeeNIP  string
	Position     string
	Destination  string
	Purpose      string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	Budget       *decimal.Decimal
	Notes        string
}

// Validate checks every submitted field and derives duration_days.
// today anchors the "start date not in the past" rule; callers pass the
// current date on both create and update, so the answer for an unchanged
// draft legitimately shifts as days pass.
//
// Returns either the validated values or a per-field error set; a failed
// validation writes nothing.
func Validate(in Input, today time.Time) (Validated, *domain.ValidationError) {
	ve := domain.NewValidationError()

	if in.DocumentType == "" {
		ve.Add("document_type", "Document type is required.")
	} else if !entity.IsValidDocumentType(in.DocumentType) {
		ve.Add("document_type", "Document type must be either SPD or SPT.")
	}

	requireText(ve, "employee_name", in.EmployeeName, 255, "Employee name")
	requireText(ve, "employee_nip", in.EmployeeNIP, 50, "Employee NIP")
	requireText(ve, "position", in.Position, 255, "Employee position")
	requireText(ve, "destination", in.Destination, 255, "Destination")
	if in.Purpose == "" {
		ve.Add("purpose", "Purpose of travel/assignment is required.")
	}

	start, startOK := parseDate(ve, "start_date", in.StartDate, "Start date")
	end, endOK := parseDate(ve, "end_date", in.EndDate, "End date")

	if startOK && start.Before(dateOnly(today)) {
		ve.Add("start_date", "Start date cannot be in the past.")
	}
	var duration int
	if startOK && endOK {
		if end.Before(start) {
			ve.Add("end_date", "End date must be after or equal to start date.")
		} else {
			duration = int(end.Sub(start)/(24*time.Hour)) + 1
		}
	}

	if in.Budget != nil && in.Budget.IsNegative() {
		ve.Add("budget", "Budget cannot be negative.")
	}

	if ve.HasErrors() {
		return Validated{}, ve
	}

	return Validated{
		DocumentType: in.DocumentType,
		EmployeeName: in.EmployeeName,
		EmployeeNIP:  in.EmployeeNIP,
		Position:     in.Position,
		Destination:  in.Destination,
		Purpose:      in.Purpose,
		StartDate:    start,
		EndDate:      end,
		DurationDays: duration,
		Budget:       in.Budget,
		Notes:        in.Notes,
	}, nil
}

// DurationDays derives the inclusive day span between two dates.
// start=2024-01-10, end=2024-01-12 gives 3.
func DurationDays(start, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(start))/(24*time.Hour)) + 1
}

func requireText(ve *domain.ValidationError, field, value string, max int, label string) {
	if value == "" {
		ve.Add(field, label+" is required.")
		return
	}
	if len([]rune(value)) > max {
		ve.Add(field, label+" may not be longer than "+strconv.Itoa(max)+" characters.")
	}
}

func parseDate(ve *domain.ValidationError, field, value, label string) (time.Time, bool) {
	if value == "" {
		ve.Add(field, label+" is required.")
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateFormat, value, time.UTC)
	if err != nil {
		ve.Add(field, label+" must be a valid date (YYYY-MM-DD).")
		return time.Time{}, false
	}
	return t, true
}

// dateOnly truncates a timestamp to UTC midnight so date comparisons ignore
// the time component.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
