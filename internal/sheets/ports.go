package sheets

import (
	"context"

	"spendlens/internal/budget"
	"spendlens/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore keeps the canonical transaction collection.
	// ListTransactions returns records newest-created first.
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// SaveTransaction inserts or replaces by ID.
		SaveTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransactions removes the given IDs and reports how many existed.
		DeleteTransactions(ctx context.Context, ids ...string) (int, error)
	}

	// BudgetStore keeps budgets in creation order.
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		SaveBudget(ctx context.Context, b core.Budget) error
		// SaveBudgets replaces several budgets atomically.
		SaveBudgets(ctx context.Context, bs []core.Budget) error
		DeleteBudget(ctx context.Context, id string) error
	}

	// DismissalStore persists the caller-owned set of dismissed alert identifiers.
	DismissalStore interface {
		ListDismissed(ctx context.Context) ([]string, error)
		Dismiss(ctx context.Context, alertID string) error
	}

	// AlertPublisher announces newly raised alerts to other processes.
	AlertPublisher interface {
		PublishAlerts(ctx context.Context, alerts []budget.Alert) error
	}

	// AlertNotifier delivers one alert to a user-facing channel.
	AlertNotifier interface {
		NotifyAlert(ctx context.Context, a budget.Alert) error
	}

	// ReportExporter writes a budget report somewhere a user can read it.
	ReportExporter interface {
		ExportBudgetReport(ctx context.Context, overview budget.Overview, budgets []core.Budget) error
	}
)

// Store is everything the ledger needs from persistence.
type Store interface {
	TransactionStore
	BudgetStore
	DismissalStore
}
