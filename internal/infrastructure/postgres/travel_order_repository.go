package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/repository"
)

var _ repository.TravelOrderRepository = (*TravelOrderRepo)(nil)

// TravelOrderRepo implements TravelOrderRepository (usable with pool or tx).
type TravelOrderRepo struct {
	q Querier
}

// NewTravelOrderRepository builds the adapter. Pass a pool or a tx (Querier).
func NewTravelOrderRepository(q Querier) *TravelOrderRepo {
	return &TravelOrderRepo{q: q}
}

// orderColumns is the read set shared by GetByID and List: every document
// column plus the creator and approver display names joined from users.
const orderColumns = `
	t.id, t.document_number, t.document_type,
	t.employee_name, t.employee_nip, t.position, t.destination, t.purpose,
	t.start_date, t.end_date, t.duration_days, t.budget,
	t.status, t.notes, t.created_by, t.approved_by, t.approved_at,
	t.created_at, t.updated_at,
	COALESCE(c.name, ''), COALESCE(a.name, '')`

const orderJoins = `
	FROM travel_orders t
	LEFT JOIN users c ON c.id = t.created_by
	LEFT JOIN users a ON a.id = t.approved_by`

// Create inserts the document. A duplicate document_number maps to
// domain.ErrConflict so the use case can regenerate the number and retry.
func (r *TravelOrderRepo) Create(ctx context.Context, o *entity.TravelOrder) error {
	query := `
		INSERT INTO travel_orders (
			id, document_number, document_type,
			employee_name, employee_nip, position, destination, purpose,
			start_date, end_date, duration_days, budget,
			status, notes, created_by, approved_by, approved_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.DocumentNumber, o.DocumentType,
		o.EmployeeName, o.EmployeeNIP, o.Position, o.Destination, o.Purpose,
		o.StartDate, o.EndDate, o.DurationDays, budgetArg(o.Budget),
		o.Status, nullIfEmpty(o.Notes), o.CreatedBy, o.ApprovedBy, o.ApprovedAt,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document number %s already exists: %w", o.DocumentNumber, domain.ErrConflict)
		}
		return fmt.Errorf("insert travel order: %w", err)
	}
	return nil
}

// GetByID loads one document with creator/approver names. (nil, nil) when
// the row does not exist.
func (r *TravelOrderRepo) GetByID(ctx context.Context, id string) (*entity.TravelOrder, error) {
	query := `SELECT` + orderColumns + orderJoins + ` WHERE t.id = $1`
	o, err := scanTravelOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get travel order: %w", err)
	}
	return o, nil
}

// List returns a newest-first page plus the total count for the filter.
func (r *TravelOrderRepo) List(ctx context.Context, filter repository.TravelOrderFilter, limit, offset int) ([]*entity.TravelOrder, int, error) {
	where, args := filterClause(filter)

	countQuery := `SELECT COUNT(*) FROM travel_orders t` + where
	var total int
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count travel orders: %w", err)
	}

	query := `SELECT` + orderColumns + orderJoins + where +
		fmt.Sprintf(` ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list travel orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.TravelOrder
	for rows.Next() {
		o, err := scanTravelOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan travel order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

// Update persists the mutable fields and the status, guarded by the status
// the caller computed its decision from. Zero rows affected means either
// the row is gone (ErrNotFound) or a concurrent transition moved the status
// first (ErrConflict).
func (r *TravelOrderRepo) Update(ctx context.Context, o *entity.TravelOrder, fromStatus string) error {
	query := `
		UPDATE travel_orders
		SET employee_name = $3,
		    employee_nip  = $4,
		    position      = $5,
		    destination   = $6,
		    purpose       = $7,
		    start_date    = $8,
		    end_date      = $9,
		    duration_days = $10,
		    budget        = $11,
		    status        = $12,
		    notes         = $13,
		    approved_by   = $14,
		    approved_at   = $15,
		    updated_at    = $16
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query,
		o.ID, fromStatus,
		o.EmployeeName, o.EmployeeNIP, o.Position, o.Destination, o.Purpose,
		o.StartDate, o.EndDate, o.DurationDays, budgetArg(o.Budget),
		o.Status, nullIfEmpty(o.Notes), o.ApprovedBy, o.ApprovedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update travel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM travel_orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update travel order: %w", err)
		}
		if exists {
			return fmt.Errorf("travel order %s changed status concurrently: %w", o.ID, domain.ErrConflict)
		}
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the document by primary key.
func (r *TravelOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM travel_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete travel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByTypeAndMonth counts documents of a type created within a calendar
// month. Runs inside the numbering transaction.
func (r *TravelOrderRepo) CountByTypeAndMonth(ctx context.Context, documentType string, year int, month time.Month) (int, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var count int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM travel_orders
		WHERE document_type = $1 AND created_at >= $2 AND created_at < $3`,
		documentType, monthStart, nextMonth,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count travel orders by type and month: %w", err)
	}
	return count, nil
}

// CountByStatus returns document counts grouped by status.
func (r *TravelOrderRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM travel_orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count travel orders by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// filterClause builds the WHERE clause and args shared by List's count and
// page queries.
func filterClause(filter repository.TravelOrderFilter) (string, []any) {
	where := ""
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.Status != "" {
		add("t.status = $%d", filter.Status)
	}
	if filter.DocumentType != "" {
		add("t.document_type = $%d", filter.DocumentType)
	}
	return where, args
}

// budgetArg maps an optional budget to its SQL value (nil -> NULL).
func budgetArg(b *decimal.Decimal) any {
	if b == nil {
		return nil
	}
	return *b
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTravelOrder(s rowScanner) (*entity.TravelOrder, error) {
	var (
		o      entity.TravelOrder
		budget decimal.NullDecimal
		notes  *string
	)
	err := s.Scan(
		&o.ID, &o.DocumentNumber, &o.DocumentType,
		&o.EmployeeName, &o.EmployeeNIP, &o.Position, &o.Destination, &o.Purpose,
		&o.StartDate, &o.EndDate, &o.DurationDays, &budget,
		&o.Status, &notes, &o.CreatedBy, &o.ApprovedBy, &o.ApprovedAt,
		&o.CreatedAt, &o.UpdatedAt,
		&o.CreatorName, &o.ApproverName,
	)
	if err != nil {
		return nil, err
	}
	if budget.Valid {
		b := budget.Decimal
		o.Budget = &b
	}
	o.Notes = derefStr(notes)
	return &o, nil
}
