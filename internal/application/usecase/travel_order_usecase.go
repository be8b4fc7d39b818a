package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bapperida/siperjadin/internal/application/dto"
	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/repository"
	"github.com/bapperida/siperjadin/internal/domain/travelorder"
)

// PageSize documents per list page, newest first.
const PageSize = 10

// numberRetries bounds how often a create is retried when the generated
// document number loses the race against a concurrent insert.
const numberRetries = 3

// TxRunner executes fn inside one database transaction, handing it a
// repository bound to that transaction. Create/update/delete each run in
// exactly one such unit of work.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.TravelOrderRepository) error) error
}

// Actor is the authenticated user as extracted from the request token.
type Actor struct {
	ID   string
	Name string
	Role string
}

// lifecycleActor converts the session actor into the lifecycle's view:
// identity plus the approval capability derived from the role.
func (a Actor) lifecycleActor() travelorder.Actor {
	return travelorder.Actor{ID: a.ID, CanApprove: entity.CanApprove(a.Role)}
}

// TravelOrderUseCase orchestrates validation, the lifecycle engine, the
// numbering generator and the document store.
type TravelOrderUseCase struct {
	tx   TxRunner
	repo repository.TravelOrderRepository // reads outside a transaction
}

// NewTravelOrderUseCase builds the use case.
func NewTravelOrderUseCase(tx TxRunner, repo repository.TravelOrderRepository) *TravelOrderUseCase {
	return &TravelOrderUseCase{tx: tx, repo: repo}
}

// Create validates the fields, assigns the document number and persists the
// new document. action=submit puts it straight into pending_approval,
// anything else leaves a draft.
//
// The number sequence is the per-type-per-month count read inside the same
// transaction as the insert. Two concurrent creates can still read the same
// count; the UNIQUE constraint on document_number makes the loser fail with
// domain.ErrConflict and the whole transaction is retried with a fresh
// count, up to numberRetries times.
func (uc *TravelOrderUseCase) Create(ctx context.Context, actor Actor, in dto.TravelOrderRequest) (*dto.TravelOrderMutationResponse, error) {
	action, err := travelorder.ParseAction(in.Action)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	validated, ve := travelorder.Validate(in.Input(), now)
	if ve != nil {
		return nil, ve
	}

	var order *entity.TravelOrder
	for attempt := 0; ; attempt++ {
		err = uc.tx.Run(ctx, func(repo repository.TravelOrderRepository) error {
			count, err := repo.CountByTypeAndMonth(ctx, validated.DocumentType, now.Year(), now.Month())
			if err != nil {
				return err
			}
			order = &entity.TravelOrder{
				ID:             uuid.New().String(),
				DocumentNumber: travelorder.DocumentNumber(validated.DocumentType, now.Year(), now.Month(), count),
				DocumentType:   validated.DocumentType,
				EmployeeName:   validated.EmployeeName,
				EmployeeNIP:    validated.EmployeeNIP,
				Position:       validated.Position,
				Destination:    validated.Destination,
				Purpose:        validated.Purpose,
				StartDate:      validated.StartDate,
				EndDate:        validated.EndDate,
				DurationDays:   validated.DurationDays,
				Budget:         validated.Budget,
				Status:         travelorder.InitialStatus(action),
				Notes:          validated.Notes,
				CreatedBy:      actor.ID,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			return repo.Create(ctx, order)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < numberRetries {
			continue
		}
		return nil, fmt.Errorf("create travel order: %w", err)
	}

	order.CreatorName = actor.Name
	message := "Travel order created successfully."
	if action == travelorder.ActionSubmit {
		message = "Travel order created and submitted for approval successfully."
	}
	return &dto.TravelOrderMutationResponse{
		Message: message,
		Data:    dto.ToTravelOrderResponse(order),
	}, nil
}

// GetByID loads a single document. domain.ErrNotFound when absent.
func (uc *TravelOrderUseCase) GetByID(ctx context.Context, id string) (*dto.TravelOrderResponse, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	resp := dto.ToTravelOrderResponse(order)
	return &resp, nil
}

// List returns a newest-first page of documents, optionally filtered by
// status and document type. Pages are 1-indexed, PageSize per page.
func (uc *TravelOrderUseCase) List(ctx context.Context, page int, filter repository.TravelOrderFilter) (*dto.TravelOrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if filter.Status != "" && !entity.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.DocumentType != "" && !entity.IsValidDocumentType(filter.DocumentType) {
		return nil, fmt.Errorf("%w: unknown document type %q", domain.ErrInvalidInput, filter.DocumentType)
	}

	offset := (page - 1) * PageSize
	orders, total, err := uc.repo.List(ctx, filter, PageSize, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TravelOrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, dto.ToTravelOrderResponse(o))
	}
	lastPage := (total + PageSize - 1) / PageSize
	if lastPage < 1 {
		lastPage = 1
	}
	return &dto.TravelOrderListResponse{
		Items: items,
		Page: dto.PageResponse{
			Page:     page,
			PerPage:  PageSize,
			Total:    total,
			LastPage: lastPage,
		},
	}, nil
}

// Update runs one lifecycle step on an existing document.
//
// save and submit re-validate the submitted fields (including the floating
// "start date not in the past" rule) and persist them; approve and reject
// only apply the transition's decision and leave the document body alone.
// The write is guarded by the status the decision was computed from, so of
// two racing transitions at most one wins and the loser gets
// domain.ErrConflict.
func (uc *TravelOrderUseCase) Update(ctx context.Context, actor Actor, id string, in dto.TravelOrderRequest) (*dto.TravelOrderMutationResponse, error) {
	action, err := travelorder.ParseAction(in.Action)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	var updated *entity.TravelOrder
	err = uc.tx.Run(ctx, func(repo repository.TravelOrderRepository) error {
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		decision, err := travelorder.Transition(order.Status, action, actor.lifecycleActor(), now)
		if err != nil {
			return err
		}

		fromStatus := order.Status
		if action == travelorder.ActionSave || action == travelorder.ActionSubmit {
			input := in.Input()
			// The type is fixed at creation; the document number encodes it.
			if input.DocumentType == "" {
				input.DocumentType = order.DocumentType
			}
			validated, ve := travelorder.Validate(input, now)
			if ve == nil && validated.DocumentType != order.DocumentType {
				ve = domain.NewValidationError()
				ve.Add("document_type", "Document type cannot be changed after creation.")
			}
			if ve != nil {
				return ve
			}
			order.EmployeeName = validated.EmployeeName
			order.EmployeeNIP = validated.EmployeeNIP
			order.Position = validated.Position
			order.Destination = validated.Destination
			order.Purpose = validated.Purpose
			order.StartDate = validated.StartDate
			order.EndDate = validated.EndDate
			order.DurationDays = validated.DurationDays
			order.Budget = validated.Budget
			order.Notes = validated.Notes
		}
		order.Status = decision.Status
		if decision.ApprovedBy != nil {
			order.ApprovedBy = decision.ApprovedBy
			order.ApprovedAt = decision.ApprovedAt
		}
		order.UpdatedAt = now

		if err := repo.Update(ctx, order, fromStatus); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.ApprovedBy != nil && *updated.ApprovedBy == actor.ID {
		updated.ApproverName = actor.Name
	}
	return &dto.TravelOrderMutationResponse{
		Message: updateMessage(action),
		Data:    dto.ToTravelOrderResponse(updated),
	}, nil
}

// Delete removes a document; only drafts may be deleted.
func (uc *TravelOrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.Run(ctx, func(repo repository.TravelOrderRepository) error {
		order, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !travelorder.EditAllowed(order.Status) {
			return fmt.Errorf("%w: only draft documents can be deleted", domain.ErrForbidden)
		}
		return repo.Delete(ctx, id)
	})
}

// Stats returns document counts grouped by status.
func (uc *TravelOrderUseCase) Stats(ctx context.Context) (*dto.TravelOrderStatsResponse, error) {
	counts, err := uc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats := &dto.TravelOrderStatsResponse{
		Draft:           counts[entity.StatusDraft],
		PendingApproval: counts[entity.StatusPendingApproval],
		Approved:        counts[entity.StatusApproved],
		Rejected:        counts[entity.StatusRejected],
		Completed:       counts[entity.StatusCompleted],
	}
	stats.Total = stats.Draft + stats.PendingApproval + stats.Approved + stats.Rejected + stats.Completed
	return stats, nil
}

func updateMessage(action travelorder.Action) string {
	switch action {
	case travelorder.ActionSubmit:
		return "Travel order submitted for approval successfully."
	case travelorder.ActionApprove:
		return "Travel order approved successfully."
	case travelorder.ActionReject:
		return "Travel order rejected."
	default:
		return "Travel order updated successfully."
	}
}
