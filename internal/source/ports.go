package source

import (
	"context"

	"bizdash/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseSource returns every expense-by-category summary it holds. There
	// is no server-side filtering; callers aggregate the full collection.
	ExpenseSource interface {
		ListExpenseSummaries(ctx context.Context) ([]core.ExpenseRecord, error)
	}

	// SummaryWriter records a new expense summary and returns a backend
	// specific reference to it.
	SummaryWriter interface {
		Append(ctx context.Context, rec core.ExpenseRecord) (ref string, err error)
	}
)
