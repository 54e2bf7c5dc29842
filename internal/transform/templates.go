package transform

import (
	"sort"
	"strings"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages named transform presets
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []ScenarioTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuiltInTemplates returns the common what-if changes
func BuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	for _, pct := range []int64{5, 10} {
		p := decimal.NewFromInt(pct)
		registry.Register(Template{
			Name:        "raise_" + p.String() + "pct",
			Description: "Employment income rises by " + p.String() + "%",
			Transforms:  []ScenarioTransform{&ScaleIncome{Source: SourceEmployment, Percent: p}},
		})
	}

	registry.Register(Template{
		Name:        "extra_shift",
		Description: "One extra eight hour shift a week at $16 per hour",
		Transforms: []ScenarioTransform{
			&AddIncome{Source: SourceEmployment, Amount: decimal.NewFromInt(16 * 8 * 52).Div(decimal.NewFromInt(12)).Round(2)},
		},
	})

	registry.Register(Template{
		Name:        "stop_work",
		Description: "No employment or self-employment income",
		Transforms: []ScenarioTransform{
			&SetIncome{Source: SourceEmployment, Amount: decimal.Zero},
			&SetIncome{Source: SourceSelfEmployment, Amount: decimal.Zero},
		},
	})

	registry.Register(Template{
		Name:        "as_family",
		Description: "Same income as a family household",
		Transforms:  []ScenarioTransform{&SetHousehold{Household: domain.HouseholdFamily}},
	})

	return registry
}
