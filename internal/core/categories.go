package core

// Fixed category catalogues offered by the pickers. Categories stay free text,
// so records may carry values outside these lists.
var (
	TransactionCategories = []string{
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Travel",
		"Education",
		"Groceries",
		"Gas",
		"Coffee",
		"Subscription",
		"Gym",
		"Other",
	}

	BudgetCategories = []string{
		"Housing",
		"Food & Dining",
		"Transportation",
		"Entertainment",
		"Shopping",
		"Healthcare",
		"Education",
		"Travel",
		"Utilities",
		"Insurance",
		"Savings",
		"Other",
	}
)

// CategoryCatalogue groups both lists for presentation layers.
type CategoryCatalogue struct {
	Transactions []string `json:"transactions"`
	Budgets      []string `json:"budgets"`
}

// Catalogue returns copies of the category lists.
func Catalogue() CategoryCatalogue {
	return CategoryCatalogue{
		Transactions: append([]string(nil), TransactionCategories...),
		Budgets:      append([]string(nil), BudgetCategories...),
	}
}
