package budget

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

//go:embed templates.toml
var templatesTOML string

var ErrTemplateNotFound = errors.New("budget template not found")

type TemplateCategory struct {
	Name       string          `toml:"name" json:"category"`
	Amount     decimal.Decimal `toml:"amount" json:"allocated"`
	Percentage decimal.Decimal `toml:"percentage" json:"percentage"`
}

// Template is a named starter set of budget allocations.
type Template struct {
	ID          string             `toml:"id" json:"id"`
	Name        string             `toml:"name" json:"name"`
	Description string             `toml:"description" json:"description"`
	Total       decimal.Decimal    `toml:"total" json:"totalBudget"`
	Categories  []TemplateCategory `toml:"category" json:"categories"`
}

var loadTemplates = sync.OnceValues(func() ([]Template, error) {
	var doc struct {
		Templates []Template `toml:"template"`
	}
	if _, err := toml.Decode(templatesTOML, &doc); err != nil {
		return nil, fmt.Errorf("decode budget templates: %w", err)
	}
	return doc.Templates, nil
})

// Templates returns the built-in templates in catalogue order.
func Templates() ([]Template, error) {
	ts, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return append([]Template(nil), ts...), nil
}

// FindTemplate looks a template up by id.
func FindTemplate(id string) (Template, error) {
	ts, err := loadTemplates()
	if err != nil {
		return Template{}, err
	}
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

// ApplyTemplate produces one fresh budget per template category with nothing
// spent. newID supplies the identifiers.
func ApplyTemplate(id string, period core.Period, newID func() string) ([]core.Budget, error) {
	if !period.Valid() {
		return nil, core.ErrInvalidPeriod
	}
	t, err := FindTemplate(id)
	if err != nil {
		return nil, err
	}
	out := make([]core.Budget, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, core.Budget{
			ID:        newID(),
			Category:  c.Name,
			Allocated: c.Amount,
			Spent:     decimal.Zero,
			Period:    period,
		})
	}
	return out, nil
}
