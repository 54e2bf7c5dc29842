package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/aishcalc/internal/compare"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"gopkg.in/yaml.v3"
)

// ScenarioFile is a base scenario with the alternatives compared against it
type ScenarioFile struct {
	Base         compare.Scenario   `yaml:"base"`
	Alternatives []compare.Scenario `yaml:"alternatives"`
}

// LoadScenariosFile loads a comparison from YAML. Scenarios without a
// household inherit the base household.
func (ip *InputParser) LoadScenariosFile(filename string) (*ScenarioFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios file %s: %w", filename, err)
	}

	var sf ScenarioFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios YAML: %w", err)
	}
	if len(sf.Alternatives) == 0 {
		return nil, fmt.Errorf("%w: at least one alternative scenario is required", domain.ErrInvalidInput)
	}

	sf.Base.Household = domain.ParseHouseholdType(string(sf.Base.Household))
	if sf.Base.Name == "" {
		sf.Base.Name = "base"
	}
	for i := range sf.Alternatives {
		alt := &sf.Alternatives[i]
		if alt.Household == "" {
			alt.Household = sf.Base.Household
		}
		alt.Household = domain.ParseHouseholdType(string(alt.Household))
		if alt.Name == "" {
			alt.Name = fmt.Sprintf("alternative %d", i+1)
		}
	}
	return &sf, nil
}
