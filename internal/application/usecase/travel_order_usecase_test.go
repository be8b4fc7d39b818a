package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapperida/siperjadin/internal/application/dto"
	"github.com/bapperida/siperjadin/internal/application/usecase"
	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/repository"
	"github.com/bapperida/siperjadin/internal/domain/travelorder"
)

var (
	staff    = usecase.Actor{ID: "user-staff", Name: "Budi Santoso", Role: entity.RoleStaff}
	approver = usecase.Actor{ID: "user-head", Name: "Siti Rahayu", Role: entity.RoleApprover}
)

// futureDate formats a date safely in the future so the "start date not in
// the past" rule never trips in tests.
func futureDate(daysFromNow int) string {
	return time.Now().AddDate(0, 0, daysFromNow).Format(travelorder.DateFormat)
}

func validRequest() dto.TravelOrderRequest {
	return dto.TravelOrderRequest{
		DocumentType: entity.TypeSPD,
		EmployeeName: "Budi",
		EmployeeNIP:  "123",
		Position:     "Staf",
		Destination:  "Jakarta",
		Purpose:      "Rapat",
		StartDate:    futureDate(7),
		EndDate:      futureDate(9),
	}
}

func newUseCase(t *testing.T) (*usecase.TravelOrderUseCase, *memStore) {
	t.Helper()
	store := newMemStore()
	return usecase.NewTravelOrderUseCase(store, store), store
}

func TestCreate_SaveYieldsDraft(t *testing.T) {
	uc, _ := newUseCase(t)

	in := validRequest()
	in.Action = "save"
	out, err := uc.Create(context.Background(), staff, in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, out.Data.Status)
	assert.Equal(t, 3, out.Data.DurationDays)
	assert.Equal(t, staff.ID, out.Data.CreatedBy)
	assert.Nil(t, out.Data.ApprovedBy)
	assert.Nil(t, out.Data.ApprovedAt)
	assert.True(t, out.Data.EditAllowed)
	assert.Equal(t, "Travel order created successfully.", out.Message)

	now := time.Now()
	assert.Equal(t,
		travelorder.DocumentNumber(entity.TypeSPD, now.Year(), now.Month(), 0),
		out.Data.DocumentNumber,
		"first SPD of the month takes sequence 001")
}

func TestCreate_OmittedActionYieldsDraft(t *testing.T) {
	uc, _ := newUseCase(t)

	out, err := uc.Create(context.Background(), staff, validRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, out.Data.Status)
}

func TestCreate_SubmitYieldsPendingApproval(t *testing.T) {
	uc, _ := newUseCase(t)

	in := validRequest()
	in.Action = "submit"
	out, err := uc.Create(context.Background(), staff, in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendingApproval, out.Data.Status)
	assert.False(t, out.Data.EditAllowed)
	assert.Equal(t, "Travel order created and submitted for approval successfully.", out.Message)
}

func TestCreate_ValidationFailureWritesNothing(t *testing.T) {
	uc, store := newUseCase(t)

	in := validRequest()
	in.StartDate = futureDate(9)
	in.EndDate = futureDate(7)
	_, err := uc.Create(context.Background(), staff, in)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, ve.Fields, "end_date")
	assert.Empty(t, store.rows, "a rejected create must not write")
}

func TestCreate_UnknownActionRejected(t *testing.T) {
	uc, store := newUseCase(t)

	in := validRequest()
	in.Action = "archive"
	_, err := uc.Create(context.Background(), staff, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.rows)
}

func TestCreate_SequencePerTypeAndMonth(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	now := time.Now()

	first, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err)
	second, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err)

	sptIn := validRequest()
	sptIn.DocumentType = entity.TypeSPT
	spt, err := uc.Create(ctx, staff, sptIn)
	require.NoError(t, err)

	assert.Equal(t, travelorder.DocumentNumber(entity.TypeSPD, now.Year(), now.Month(), 0), first.Data.DocumentNumber)
	assert.Equal(t, travelorder.DocumentNumber(entity.TypeSPD, now.Year(), now.Month(), 1), second.Data.DocumentNumber)
	assert.Equal(t, travelorder.DocumentNumber(entity.TypeSPT, now.Year(), now.Month(), 0), spt.Data.DocumentNumber,
		"each type carries its own sequence")
}

func TestCreate_RetriesOnNumberConflict(t *testing.T) {
	store := &staleCountStore{memStore: newMemStore(), staleCalls: 2, staleValue: 0}
	uc := usecase.NewTravelOrderUseCase(store, store.memStore)
	ctx := context.Background()

	// Both creates read the pinned count 0; the second insert collides on
	// the unique document number and must retry with a fresh count.
	first, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err)
	second, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err, "the losing create must retry, not fail")

	assert.NotEqual(t, first.Data.DocumentNumber, second.Data.DocumentNumber)
}

func TestCreate_GivesUpAfterRetryBudget(t *testing.T) {
	// Every count is stale, so every attempt collides after the first
	// record exists.
	store := &staleCountStore{memStore: newMemStore(), staleCalls: 100, staleValue: 0}
	uc := usecase.NewTravelOrderUseCase(store, store.memStore)
	ctx := context.Background()

	_, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err)
	_, err = uc.Create(ctx, staff, validRequest())
	assert.ErrorIs(t, err, domain.ErrConflict, "exhausted retries surface the conflict to the caller")
}

func TestCreate_ConcurrentSameTypeAndMonth_UniqueNumbers(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	const workers = 24
	var wg sync.WaitGroup
	results := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := uc.Create(ctx, staff, validRequest())
			if err != nil {
				errs <- err
				return
			}
			results <- out.Data.DocumentNumber
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for number := range results {
		assert.False(t, seen[number], "duplicate document number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)
	assert.Len(t, store.rows, workers)
}

func TestGetByID(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, staff, validRequest())
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, created.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Data.DocumentNumber, got.DocumentNumber)

	_, err = uc.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_PaginationAndFilters(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	for i := 0; i < usecase.PageSize+3; i++ {
		in := validRequest()
		if i%2 == 0 {
			in.Action = "submit"
		}
		_, err := uc.Create(ctx, staff, in)
		require.NoError(t, err)
	}

	page1, err := uc.List(ctx, 1, repository.TravelOrderFilter{})
	require.NoError(t, err)
	assert.Len(t, page1.Items, usecase.PageSize)
	assert.Equal(t, usecase.PageSize+3, page1.Page.Total)
	assert.Equal(t, 2, page1.Page.LastPage)

	page2, err := uc.List(ctx, 2, repository.TravelOrderFilter{})
	require.NoError(t, err)
	assert.Len(t, page2.Items, 3)

	pending, err := uc.List(ctx, 1, repository.TravelOrderFilter{Status: entity.StatusPendingApproval})
	require.NoError(t, err)
	assert.Equal(t, 7, pending.Page.Total)
	for _, item := range pending.Items {
		assert.Equal(t, entity.StatusPendingApproval, item.Status)
	}

	_, err = uc.List(ctx, 1, repository.TravelOrderFilter{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func createDraft(t *testing.T, uc *usecase.TravelOrderUseCase) dto.TravelOrderResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), staff, validRequest())
	require.NoError(t, err)
	return out.Data
}

func createPending(t *testing.T, uc *usecase.TravelOrderUseCase) dto.TravelOrderResponse {
	t.Helper()
	in := validRequest()
	in.Action = "submit"
	out, err := uc.Create(context.Background(), staff, in)
	require.NoError(t, err)
	return out.Data
}

func TestUpdate_SaveRecomputesDuration(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	draft := createDraft(t, uc)

	in := validRequest()
	in.StartDate = futureDate(10)
	in.EndDate = futureDate(14)
	budget := decimal.RequireFromString("1500000.50")
	in.Budget = &budget

	out, err := uc.Update(ctx, staff, draft.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, out.Data.Status)
	assert.Equal(t, 5, out.Data.DurationDays, "duration is rederived from the new dates")
	require.NotNil(t, out.Data.Budget)
	assert.True(t, budget.Equal(*out.Data.Budget))
	assert.Equal(t, "Travel order updated successfully.", out.Message)
}

func TestUpdate_SubmitDraft(t *testing.T) {
	uc, _ := newUseCase(t)
	draft := createDraft(t, uc)

	in := validRequest()
	in.Action = "submit"
	out, err := uc.Update(context.Background(), staff, draft.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, out.Data.Status)
	assert.Equal(t, "Travel order submitted for approval successfully.", out.Message)
}

func TestUpdate_ApproveSetsApproverAndTimestampTogether(t *testing.T) {
	uc, store := newUseCase(t)
	pending := createPending(t, uc)

	in := dto.TravelOrderRequest{Action: "approve"}
	out, err := uc.Update(context.Background(), approver, pending.ID, in)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, out.Data.Status)
	require.NotNil(t, out.Data.ApprovedBy)
	require.NotNil(t, out.Data.ApprovedAt)
	assert.Equal(t, approver.ID, *out.Data.ApprovedBy)
	assert.WithinDuration(t, time.Now(), *out.Data.ApprovedAt, 5*time.Second)
	assert.Equal(t, "Travel order approved successfully.", out.Message)

	stored := store.rows[pending.ID]
	require.NotNil(t, stored.ApprovedBy)
	require.NotNil(t, stored.ApprovedAt)

	// The approval decision leaves the document body untouched.
	assert.Equal(t, pending.EmployeeName, stored.EmployeeName)
	assert.Equal(t, pending.DurationDays, stored.DurationDays)
}

func TestUpdate_RejectSetsNeither(t *testing.T) {
	uc, store := newUseCase(t)
	pending := createPending(t, uc)

	out, err := uc.Update(context.Background(), approver, pending.ID, dto.TravelOrderRequest{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, out.Data.Status)
	assert.Nil(t, out.Data.ApprovedBy)
	assert.Nil(t, out.Data.ApprovedAt)
	assert.Equal(t, "Travel order rejected.", out.Message)

	stored := store.rows[pending.ID]
	assert.Nil(t, stored.ApprovedBy)
	assert.Nil(t, stored.ApprovedAt)
}

func TestUpdate_ApproveWithoutCapability(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	for _, status := range []string{entity.StatusDraft, entity.StatusPendingApproval} {
		var doc dto.TravelOrderResponse
		if status == entity.StatusDraft {
			doc = createDraft(t, uc)
		} else {
			doc = createPending(t, uc)
		}

		_, err := uc.Update(ctx, staff, doc.ID, dto.TravelOrderRequest{Action: "approve"})
		assert.ErrorIs(t, err, domain.ErrForbidden, "status %s", status)
		assert.Equal(t, status, store.rows[doc.ID].Status, "status must remain %s", status)
	}
}

func TestUpdate_NonDraftCannotBeEdited(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	pending := createPending(t, uc)

	in := validRequest()
	in.Action = "save"
	_, err := uc.Update(ctx, staff, pending.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Terminal statuses refuse everything, including approve.
	approved := createPending(t, uc)
	_, err = uc.Update(ctx, approver, approved.ID, dto.TravelOrderRequest{Action: "approve"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, approver, approved.ID, dto.TravelOrderRequest{Action: "approve"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_DocumentTypeImmutable(t *testing.T) {
	uc, _ := newUseCase(t)
	draft := createDraft(t, uc) // SPD

	in := validRequest()
	in.DocumentType = entity.TypeSPT
	_, err := uc.Update(context.Background(), staff, draft.ID, in)
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, ve.Fields, "document_type")
}

func TestUpdate_NotFound(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Update(context.Background(), staff, "missing-id", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_ConcurrentTransition_OneWins(t *testing.T) {
	// The optimistic status guard on Update: a write computed from a status
	// the row no longer holds is refused with a conflict.
	store := newMemStore()
	uc := usecase.NewTravelOrderUseCase(store, store)
	pending := createPending(t, uc)
	ctx := context.Background()

	stale, err := store.GetByID(ctx, pending.ID)
	require.NoError(t, err)

	_, err = uc.Update(ctx, approver, pending.ID, dto.TravelOrderRequest{Action: "approve"})
	require.NoError(t, err)

	stale.Status = entity.StatusRejected
	err = store.Update(ctx, stale, entity.StatusPendingApproval)
	assert.ErrorIs(t, err, domain.ErrConflict, "the losing transition gets a conflict, not a silent overwrite")

	assert.Equal(t, entity.StatusApproved, store.rows[pending.ID].Status)
}

func TestDelete_DraftOnly(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()

	draft := createDraft(t, uc)
	require.NoError(t, uc.Delete(ctx, draft.ID))
	assert.NotContains(t, store.rows, draft.ID)

	for _, action := range []string{"submit", "approve"} {
		doc := createPending(t, uc)
		if action == "approve" {
			_, err := uc.Update(ctx, approver, doc.ID, dto.TravelOrderRequest{Action: "approve"})
			require.NoError(t, err)
		}
		err := uc.Delete(ctx, doc.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Contains(t, store.rows, doc.ID, "a refused delete leaves the record present")
	}

	assert.ErrorIs(t, uc.Delete(ctx, "missing-id"), domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	createDraft(t, uc)
	createDraft(t, uc)
	pending := createPending(t, uc)
	_, err := uc.Update(ctx, approver, pending.ID, dto.TravelOrderRequest{Action: "approve"})
	require.NoError(t, err)
	rejected := createPending(t, uc)
	_, err = uc.Update(ctx, approver, rejected.ID, dto.TravelOrderRequest{Action: "reject"})
	require.NoError(t, err)

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Draft)
	assert.Equal(t, 0, stats.PendingApproval)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0, stats.Completed)
	assert.Equal(t, 4, stats.Total)
}

// Guard against the example from the numbering scheme: the first SPD of a
// month is numbered SPD/001/BAPPERIDA/<month>/<year>.
func ExampleTravelOrderUseCase() {
	fmt.Println(travelorder.DocumentNumber(entity.TypeSPD, 2025, time.March, 0))
	// Output: SPD/001/BAPPERIDA/03/2025
}
