package sqlite

import (
	"context"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/store"
)

type expensesRepo struct {
	db dbtx
}

func (r *expensesRepo) CreateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	now := time.Now().UTC()
	expense.CreatedAt = now
	expense.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_id, amount_cents, category, date, description, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.OwnerID, expense.AmountCents, expense.Category,
		expense.Date, expense.Description, expense.Type, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return domain.Expense{}, err
	}

	return expense, nil
}

func (r *expensesRepo) GetExpenseByID(ctx context.Context, id string) (domain.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, amount_cents, category, date, description, type, created_at, updated_at
		FROM expenses WHERE id = ?`, id,
	)

	var e domain.Expense
	err := row.Scan(&e.ID, &e.OwnerID, &e.AmountCents, &e.Category, &e.Date,
		&e.Description, &e.Type, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Expense{}, mapNotFound(err)
	}
	return e, nil
}

func (r *expensesRepo) ListExpensesByOwner(ctx context.Context, ownerID string) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, amount_cents, category, date, description, type, created_at, updated_at
		FROM expenses WHERE owner_id = ?
		ORDER BY date DESC, id DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.AmountCents, &e.Category, &e.Date,
			&e.Description, &e.Type, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *expensesRepo) UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	expense.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET amount_cents = ?, category = ?, date = ?, description = ?, type = ?, updated_at = ?
		WHERE id = ?`,
		expense.AmountCents, expense.Category, expense.Date, expense.Description,
		expense.Type, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return domain.Expense{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Expense{}, err
	}
	if affected == 0 {
		return domain.Expense{}, store.ErrNotFound
	}

	// Re-read so the caller gets the stored row, created_at included,
	// rather than an echo of the input.
	return r.GetExpenseByID(ctx, expense.ID)
}

func (r *expensesRepo) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
