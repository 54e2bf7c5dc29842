package output

import (
	"fmt"
	"sort"
	"strings"
)

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(r *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{},
	"csv":     CSVFormatter{},
}

var formatAliases = map[string]string{
	"table": "console",
	"text":  "console",
}

// GetFormatterByName returns the formatter registered under name or one of
// its aliases. Lookup is case-insensitive.
func GetFormatterByName(name string) (Formatter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := formatAliases[key]; ok {
		key = alias
	}
	f, ok := formatters[key]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (available: %s)", name, strings.Join(AvailableFormatterNames(), ", "))
	}
	return f, nil
}

// AvailableFormatterNames lists the registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases maps each alias to its formatter name
func AvailableFormatAliases() map[string]string {
	out := make(map[string]string, len(formatAliases))
	for k, v := range formatAliases {
		out[k] = v
	}
	return out
}
