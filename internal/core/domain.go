package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	StatusHealthy  BudgetStatus = "healthy"
	StatusWarning  BudgetStatus = "warning"
	StatusCritical BudgetStatus = "critical"
)

const maxDescriptionLen = 200

type (
	// Kind carries the direction of a transaction. Amounts are never negative.
	Kind string

	// Period is the informational budget period label.
	Period string

	// BudgetStatus is the coarse health of a single budget.
	BudgetStatus string

	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Kind        Kind            `json:"type"`
		Date        Date            `json:"date"`
		Notes       string          `json:"notes,omitempty"`
	}

	// Budget tracks Spent independently of any transaction collection.
	Budget struct {
		ID        string          `json:"id"`
		Category  string          `json:"category"`
		Allocated decimal.Decimal `json:"allocated"`
		Spent     decimal.Decimal `json:"spent"`
		Period    Period          `json:"period"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidKind        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrNotFound           = errors.New("not found")
)

var hundred = decimal.NewFromInt(100)

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

// ParsePeriod accepts the period labels case-insensitively ("Monthly", "monthly").
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Allocated.IsNegative() || b.Spent.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

// Utilization returns spent/allocated as a percentage, or zero when nothing is allocated.
func (b Budget) Utilization() decimal.Decimal {
	if !b.Allocated.IsPositive() {
		return decimal.Zero
	}
	return b.Spent.Mul(hundred).Div(b.Allocated)
}

// Remaining is allocated minus spent and goes negative once a budget is exceeded.
func (b Budget) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}

func (b Budget) Status() BudgetStatus {
	return StatusFor(b.Utilization())
}

// StatusFor maps a utilization percentage onto the card colouring bands.
func StatusFor(utilization decimal.Decimal) BudgetStatus {
	switch {
	case utilization.GreaterThanOrEqual(decimal.NewFromInt(90)):
		return StatusCritical
	case utilization.GreaterThanOrEqual(decimal.NewFromInt(75)):
		return StatusWarning
	default:
		return StatusHealthy
	}
}
