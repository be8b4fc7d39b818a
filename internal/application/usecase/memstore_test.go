package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bapperida/siperjadin/internal/domain"
	"github.com/bapperida/siperjadin/internal/domain/entity"
	"github.com/bapperida/siperjadin/internal/domain/repository"
)

// memStore is an in-memory TravelOrderRepository plus TxRunner for unit
// tests. It enforces the same guarantees the Postgres adapter gets from the
// database: a unique constraint on document_number (violations surface as
// domain.ErrConflict) and an optimistic status check on Update.
//
// Run serializes whole units of work with txMu, mirroring how the count +
// insert pair executes atomically against Postgres; individual reads outside
// a transaction only take the data lock.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	seq  int
	rows map[string]*entity.TravelOrder
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]*entity.TravelOrder{}}
}

func (s *memStore) Run(ctx context.Context, fn func(repo repository.TravelOrderRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *memStore) Create(_ context.Context, order *entity.TravelOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.DocumentNumber == order.DocumentNumber {
			return domain.ErrConflict
		}
	}
	s.seq++
	cp := *order
	s.rows[order.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, id string) (*entity.TravelOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (s *memStore) List(_ context.Context, filter repository.TravelOrderFilter, limit, offset int) ([]*entity.TravelOrder, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*entity.TravelOrder
	for _, row := range s.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.DocumentType != "" && row.DocumentType != filter.DocumentType {
			continue
		}
		cp := *row
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].DocumentNumber > all[j].DocumentNumber
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *memStore) Update(_ context.Context, order *entity.TravelOrder, fromStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if row.Status != fromStatus {
		return domain.ErrConflict
	}
	cp := *order
	s.rows[order.ID] = &cp
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) CountByTypeAndMonth(_ context.Context, documentType string, year int, month time.Month) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.rows {
		if row.DocumentType != documentType {
			continue
		}
		if row.CreatedAt.Year() == year && row.CreatedAt.Month() == month {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CountByStatus(_ context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, row := range s.rows {
		counts[row.Status]++
	}
	return counts, nil
}

// staleCountStore wraps memStore and serves a pinned count for the first
// few CountByTypeAndMonth calls, reproducing the count-then-insert race
// deterministically: the stale count leads to a duplicate document number,
// the insert hits the unique constraint and the use case must retry.
type staleCountStore struct {
	*memStore
	staleCalls int
	staleValue int
}

func (s *staleCountStore) Run(ctx context.Context, fn func(repo repository.TravelOrderRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *staleCountStore) CountByTypeAndMonth(ctx context.Context, documentType string, year int, month time.Month) (int, error) {
	if s.staleCalls > 0 {
		s.staleCalls--
		return s.staleValue, nil
	}
	return s.memStore.CountByTypeAndMonth(ctx, documentType, year, month)
}
