// Package memory is an in-process store implementation for development
// and tests. It mimics the remote store's contract: writes are serialized
// and reads return the post-write truth.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/nongduongsteams-ai/app-chi-tieu/internal/core"
)

type Store struct {
	mu         sync.Mutex
	nextID     int64
	expenses   []core.ExpenseRecord
	categories []core.CategoryRecord
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewSeeded returns a store preloaded with a default category taxonomy.
func NewSeeded() *Store {
	s := New()
	for _, c := range []struct{ name, desc string }{
		{"Ăn uống", "Ăn sáng, trưa, tối, cà phê"},
		{"Đi lại", "Xăng xe, gửi xe, taxi"},
		{"Hóa đơn", "Điện, nước, internet"},
		{"Mua sắm", "Quần áo, đồ gia dụng"},
		{"Khác", "Các khoản chi khác"},
	} {
		s.categories = append(s.categories, core.CategoryRecord{
			ID:           core.ID(strconv.FormatInt(s.nextID, 10)),
			CategoryName: c.name,
			Description:  c.desc,
			Status:       "active",
		})
		s.nextID++
	}
	return s
}

func (s *Store) GetExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseRecord, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

func (s *Store) GetCategories(_ context.Context) ([]core.CategoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CategoryRecord, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) GetStats(_ context.Context) (core.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Summarize(s.expenses), nil
}

func (s *Store) AddExpense(_ context.Context, rec core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.assignID()
	s.expenses = append(s.expenses, rec)
	return nil
}

func (s *Store) EditExpense(_ context.Context, rec core.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == rec.ID {
			s.expenses[i] = rec
			return nil
		}
	}
	return fmt.Errorf("expense %s not found", rec.ID)
}

func (s *Store) DeleteExpense(_ context.Context, id core.ID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s not found", id)
}

func (s *Store) AddCategory(_ context.Context, rec core.CategoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.assignID()
	if rec.Status == "" {
		rec.Status = "active"
	}
	s.categories = append(s.categories, rec)
	return nil
}

func (s *Store) EditCategory(_ context.Context, rec core.CategoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == rec.ID {
			s.categories[i] = rec
			return nil
		}
	}
	return fmt.Errorf("category %s not found", rec.ID)
}

func (s *Store) DeleteCategory(_ context.Context, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %s not found", id)
}

func (s *Store) assignID() core.ID {
	id := core.ID(strconv.FormatInt(s.nextID, 10))
	s.nextID++
	return id
}
