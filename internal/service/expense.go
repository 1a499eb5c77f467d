package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
	"github.com/outlayhq/outlay/pkg/idx"
)

// ErrExpenseNotFound reports an expense that does not exist for the caller.
// Foreign-owned expenses surface the same way so ids cannot be enumerated.
var ErrExpenseNotFound = errors.New("service: expense not found")

// ExpenseService is the owner-scoped expense resource. Every operation takes
// the acting user's id and never touches rows owned by anyone else.
type ExpenseService struct {
	Store store.Store
}

func (s *ExpenseService) List(ctx context.Context, ownerID string) ([]domain.Expense, error) {
	expenses, err := s.Store.Expenses().ListExpensesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, ownerID string, expense domain.Expense) (domain.Expense, error) {
	expense.ID = idx.New().String()
	expense.OwnerID = ownerID

	created, err := s.Store.Expenses().CreateExpense(ctx, expense)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

// Update rewrites an expense the caller owns. The ownership check and the
// write are separate statements; owner-scoped rows only ever change via this
// path, so the window between them cannot change ownership.
func (s *ExpenseService) Update(ctx context.Context, ownerID, id string, expense domain.Expense) (domain.Expense, error) {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return domain.Expense{}, err
	}

	expense.ID = id
	expense.OwnerID = ownerID

	updated, err := s.Store.Expenses().UpdateExpense(ctx, expense)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return domain.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	err := s.Store.Expenses().DeleteExpense(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrExpenseNotFound
	}
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *ExpenseService) getOwned(ctx context.Context, ownerID, id string) (domain.Expense, error) {
	expense, err := s.Store.Expenses().GetExpenseByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Expense{}, ErrExpenseNotFound
	}
	if err != nil {
		return domain.Expense{}, fmt.Errorf("get expense: %w", err)
	}

	if expense.OwnerID != ownerID {
		return domain.Expense{}, ErrExpenseNotFound
	}
	return expense, nil
}
