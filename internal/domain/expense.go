package domain

import "time"

// ExpenseType distinguishes one-off from recurring expenses.
type ExpenseType string

const (
	ExpenseSingle    ExpenseType = "SINGLE"
	ExpenseRecurring ExpenseType = "RECURRING"
)

// Expense is a single tracked expense owned by a user. AmountCents avoids
// floating point money; Date is the day the expense occurred (no time of day).
type Expense struct {
	ID          string
	OwnerID     string
	AmountCents int64
	Category    string
	Date        time.Time
	Description string
	Type        ExpenseType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
