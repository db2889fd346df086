package budget

import (
	"strings"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

type AdjustmentMode string

const (
	ModePercentage  AdjustmentMode = "percentage"
	ModeFixedAmount AdjustmentMode = "fixedAmount"
)

// AdjustmentSpec is a uniform delta applied to every budget. Value is signed.
type AdjustmentSpec struct {
	Mode  AdjustmentMode  `json:"mode"`
	Value decimal.Decimal `json:"value"`
}

// ParseAdjustmentMode accepts the mode names case-insensitively, plus "fixed".
func ParseAdjustmentMode(s string) (AdjustmentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent":
		return ModePercentage, nil
	case "fixedamount", "fixed":
		return ModeFixedAmount, nil
	default:
		return "", core.NewConfigurationError("adjustment mode", s)
	}
}

// BulkAdjust returns copies of budgets with the allocation shifted by spec
// and clamped at zero. Spent is left as is.
func BulkAdjust(budgets []core.Budget, spec AdjustmentSpec) ([]core.Budget, error) {
	mode, err := ParseAdjustmentMode(string(spec.Mode))
	if err != nil {
		return nil, err
	}

	apply := func(allocated decimal.Decimal) decimal.Decimal {
		return allocated.Add(spec.Value)
	}
	if mode == ModePercentage {
		factor := decimal.NewFromInt(1).Add(spec.Value.Div(hundred))
		apply = func(allocated decimal.Decimal) decimal.Decimal {
			return allocated.Mul(factor)
		}
	}

	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		b.Allocated = decimal.Max(decimal.Zero, apply(b.Allocated))
		out[i] = b
	}
	return out, nil
}

var hundred = decimal.NewFromInt(100)
