package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry creates transforms from string parameters for the CLI
type TransformRegistry struct {
	factories map[string]TransformFactory
	templates *TemplateRegistry
}

// TransformFactory is a function that creates a transform from parameters
type TransformFactory func(params map[string]string) (ScenarioTransform, error)

// NewTransformRegistry creates a registry with the built-in transforms and
// templates registered
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
		templates: BuiltInTemplates(),
	}

	registry.Register("add_income", createAddIncome)
	registry.Register("set_income", createSetIncome)
	registry.Register("scale_income", createScaleIncome)
	registry.Register("set_household", createSetHousehold)

	return registry
}

// Register adds a transform factory to the registry
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters
func (r *TransformRegistry) Create(name string, params map[string]string) (ScenarioTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: unknown transform: %s", domain.ErrInvalidInput, name)
	}
	return factory(params)
}

// List returns the names of all registered transforms, sorted
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses "name:key=value,key=value"
// Example: "add_income:source=employment,amount=250"
func (r *TransformRegistry) ParseTransformSpec(spec string) (ScenarioTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: invalid transform spec format, expected 'name:params', got: %s",
			domain.ErrInvalidInput, spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("%w: invalid parameter format, expected 'key=value', got: %s",
					domain.ErrInvalidInput, paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

// ParseAlternative turns one alternative description into transforms. The
// description is a template name or transform specs joined by ";".
func (r *TransformRegistry) ParseAlternative(desc string) ([]ScenarioTransform, error) {
	if t, ok := r.templates.Get(strings.TrimSpace(desc)); ok {
		return t.Transforms, nil
	}

	var transforms []ScenarioTransform
	for _, spec := range strings.Split(desc, ";") {
		t, err := r.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

// Templates returns the named presets
func (r *TransformRegistry) Templates() *TemplateRegistry {
	return r.templates
}

func createAddIncome(params map[string]string) (ScenarioTransform, error) {
	amount, err := requireAmount("add_income", params, "amount")
	if err != nil {
		return nil, err
	}
	return &AddIncome{Source: IncomeSource(params["source"]), Amount: amount}, nil
}

func createSetIncome(params map[string]string) (ScenarioTransform, error) {
	amount, err := requireAmount("set_income", params, "amount")
	if err != nil {
		return nil, err
	}
	return &SetIncome{Source: IncomeSource(params["source"]), Amount: amount}, nil
}

func createScaleIncome(params map[string]string) (ScenarioTransform, error) {
	pct, err := requireAmount("scale_income", params, "percent")
	if err != nil {
		return nil, err
	}
	source := params["source"]
	return &ScaleIncome{
		Source:  IncomeSource(source),
		Percent: pct,
		All:     source == "all",
	}, nil
}

func createSetHousehold(params map[string]string) (ScenarioTransform, error) {
	household, ok := params["household"]
	if !ok {
		return nil, fmt.Errorf("%w: set_household requires 'household' parameter", domain.ErrInvalidInput)
	}
	return &SetHousehold{Household: domain.ParseHouseholdType(household)}, nil
}

func requireAmount(transform string, params map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := params[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s requires '%s' parameter", domain.ErrInvalidInput, transform, key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s value %q", domain.ErrInvalidInput, key, raw)
	}
	return d, nil
}
