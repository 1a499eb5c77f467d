package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/outlayhq/outlay/internal/domain"
	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/pkg/httpx"
)

const expenseDateLayout = "2006-01-02"

// ExpensesHandler serves the owner-scoped /api/expenses resource. All routes
// sit behind the credential gate plus RequireUser, so a principal is always
// present by the time these run.
type ExpensesHandler struct {
	ExpenseService *service.ExpenseService
}

type expenseRequest struct {
	AmountCents int64  `json:"amountCents"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (e expenseRequest) validate() (domain.Expense, *httpx.Error) {
	if e.AmountCents <= 0 {
		return domain.Expense{}, httpx.NewValidationError("amountCents must be positive.")
	}
	if e.Category == "" {
		return domain.Expense{}, httpx.NewValidationError("category is required.")
	}

	date, err := time.Parse(expenseDateLayout, e.Date)
	if err != nil {
		return domain.Expense{}, httpx.NewValidationError("date must be formatted YYYY-MM-DD.")
	}

	kind := domain.ExpenseType(e.Type)
	if kind != domain.ExpenseSingle && kind != domain.ExpenseRecurring {
		return domain.Expense{}, httpx.NewValidationError("type must be SINGLE or RECURRING.")
	}

	return domain.Expense{
		AmountCents: e.AmountCents,
		Category:    e.Category,
		Date:        date,
		Description: e.Description,
		Type:        kind,
	}, nil
}

type expenseResponse struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amountCents"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toExpenseResponse(e domain.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		AmountCents: e.AmountCents,
		Category:    e.Category,
		Date:        e.Date.Format(expenseDateLayout),
		Description: e.Description,
		Type:        string(e.Type),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ExpensesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := httpx.PrincipalFromContext(ctx)

	expenses, err := h.ExpenseService.List(ctx, principal.UserID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ExpensesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := httpx.PrincipalFromContext(ctx)

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.NewValidationError("Invalid JSON body.").WriteError(w)
		return
	}
	expense, verr := req.validate()
	if verr != nil {
		verr.WriteError(w)
		return
	}

	created, err := h.ExpenseService.Create(ctx, principal.UserID, expense)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (h *ExpensesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := httpx.PrincipalFromContext(ctx)
	id := r.PathValue("id")

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.NewValidationError("Invalid JSON body.").WriteError(w)
		return
	}
	expense, verr := req.validate()
	if verr != nil {
		verr.WriteError(w)
		return
	}

	updated, err := h.ExpenseService.Update(ctx, principal.UserID, id, expense)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (h *ExpensesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := httpx.PrincipalFromContext(ctx)
	id := r.PathValue("id")

	if err := h.ExpenseService.Delete(ctx, principal.UserID, id); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
