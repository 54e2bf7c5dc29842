package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against the given state file and returns stdout
func run(t *testing.T, statePath string, args ...string) (string, error) {
	t.Helper()
	base := []string{"--log.level", "error"}
	if statePath == "" {
		base = append(base, "--store.backend", "memory")
	} else {
		base = append(base, "--store.backend", "file", "--store.path", statePath)
	}
	var out bytes.Buffer
	err := execute(context.Background(), append(args, base...), &out)
	return out.String(), err
}

func mustRun(t *testing.T, statePath string, args ...string) string {
	t.Helper()
	out, err := run(t, statePath, args...)
	require.NoError(t, err, out)
	return out
}

func decodeMap(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &m), s)
	return m
}

func decodeList(t *testing.T, s string) []map[string]any {
	t.Helper()
	var l []map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &l), s)
	return l
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "aishcalc", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommand_Help(t *testing.T) {
	var buf bytes.Buffer
	err := execute(context.Background(), []string{"--help"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "aishcalc")
	assert.Contains(t, buf.String(), "--store.backend")
}

func TestCommandSubcommands(t *testing.T) {
	cmd := newRootCmd()
	expected := []string{
		"calculate", "validate", "period", "threshold", "compare", "payday", "payment",
		"adjustment", "export", "import", "clear-all", "serve", "version",
	}
	for _, name := range expected {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}

	for _, path := range [][]string{
		{"payday", "add"}, {"payday", "update"}, {"payday", "remove"}, {"payday", "list"}, {"payday", "clear"},
		{"payment", "add"}, {"payment", "remove"}, {"payment", "list"}, {"payment", "clear"},
		{"adjustment", "show"}, {"adjustment", "set"}, {"adjustment", "recompute"}, {"adjustment", "history"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[1], found.Name())
	}
}

func TestInvalidCommandAndFlag(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, execute(context.Background(), []string{"bogus"}, &buf))
	assert.Error(t, execute(context.Background(), []string{"calculate", "--no-such-flag"}, &buf))
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "", "version")
	assert.Contains(t, out, "aishcalc dev (commit none, built unknown)")
}

func TestCalculate_Flags(t *testing.T) {
	out := mustRun(t, "", "calculate", "--employment", "1500", "-f", "json")
	result := decodeMap(t, out)
	assert.Equal(t, "single", result["household"])
	assert.Equal(t, "1687", result["benefitBeforeAdjustment"])
	assert.Equal(t, "1687", result["benefitAfterAdjustment"])

	out = mustRun(t, "", "calculate", "--household", "family", "--employment", "4000", "-f", "json")
	assert.Equal(t, "1101", decodeMap(t, out)["benefitBeforeAdjustment"])

	_, err := run(t, "", "calculate", "--employment", "lots")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, "", "calculate", "--household", "couple")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculate_InputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(input, []byte("household: family\nincome:\n  employment: 4000\n"), 0o644))

	out := mustRun(t, "", "calculate", input, "-f", "json")
	assert.Equal(t, "1101", decodeMap(t, out)["benefitBeforeAdjustment"])
}

func TestCalculate_SaveRestoresInputs(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	out := mustRun(t, state, "calculate", "--employment", "1500", "--save")
	assert.Contains(t, out, "Inputs saved.")

	out = mustRun(t, state, "calculate", "-f", "json")
	assert.Equal(t, "1500", decodeMap(t, out)["totalIncome"])
}

func TestTrackerFlow(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	mustRun(t, state, "payday", "add", "2025-01-20", "500", "--note", "shift")
	mustRun(t, state, "payday", "add", "2025-02-10", "1000")

	out := mustRun(t, state, "payment", "add", "2025-02-25", "1700", "-f", "json")
	summary := decodeMap(t, out)
	adjustment := summary["adjustment"].(map[string]any)
	assert.Equal(t, "13", adjustment["value"])
	assert.Equal(t, "derived", adjustment["mode"])
	assert.EqualValues(t, 1, summary["count"])

	out = mustRun(t, state, "period", "2025-02", "-f", "json")
	period := decodeMap(t, out)
	assert.Equal(t, "1500", period["income"])
	assert.Equal(t, "1700", period["adjustedEstimate"])

	history := decodeList(t, mustRun(t, state, "adjustment", "history", "-f", "json"))
	require.Len(t, history, 1)
	assert.Equal(t, "1687", history[0]["expected"])

	paydays := decodeList(t, mustRun(t, state, "payday", "list", "-f", "json"))
	require.Len(t, paydays, 2)
	assert.Equal(t, "shift", paydays[0]["note"])

	out = mustRun(t, state, "adjustment", "set", "50", "-f", "json")
	assert.Equal(t, "overridden", decodeMap(t, out)["adjustment"].(map[string]any)["mode"])

	out = mustRun(t, state, "adjustment", "recompute", "-f", "json")
	assert.Equal(t, "13", decodeMap(t, out)["adjustment"].(map[string]any)["value"])

	out = mustRun(t, state, "payment", "remove", "2025-02-25", "-f", "json")
	assert.EqualValues(t, 0, decodeMap(t, out)["count"])

	payments := decodeList(t, mustRun(t, state, "payment", "list", "-f", "json"))
	assert.Empty(t, payments)
}

func TestPaydayErrors(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	_, err := run(t, state, "payday", "update", "2025-01-20", "600")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, state, "payday", "add", "2025-13-40", "600")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, state, "payday", "add", "2025-01-20", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, state, "payday", "add", "2025-01-20")
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	state := filepath.Join(dir, "state.json")
	exportPath := filepath.Join(dir, "export.json")

	mustRun(t, state, "payday", "add", "2025-01-20", "500")
	mustRun(t, state, "payday", "add", "2025-02-10", "1000")
	mustRun(t, state, "payment", "add", "2025-02-25", "1700")

	out := mustRun(t, state, "export", exportPath)
	assert.Contains(t, out, "Data exported to "+exportPath)

	stdout := mustRun(t, state, "export", "-")
	assert.Contains(t, stdout, `"version": 2`)

	mustRun(t, state, "clear-all", "--yes")
	assert.Empty(t, decodeList(t, mustRun(t, state, "payday", "list", "-f", "json")))

	out = mustRun(t, state, "import", exportPath)
	assert.Contains(t, out, "Imported 2 paydays and 1 payments.")

	out = mustRun(t, state, "adjustment", "show", "-f", "json")
	assert.Equal(t, "13", decodeMap(t, out)["adjustment"].(map[string]any)["value"])
}

func TestImportRejectsEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"calculatorData": {}}`), 0o644))

	_, err := run(t, filepath.Join(dir, "state.json"), "import", bad)
	assert.ErrorIs(t, err, domain.ErrMissingCollections)
}

func TestClearAllRequiresConfirmation(t *testing.T) {
	_, err := run(t, "", "clear-all")
	assert.ErrorIs(t, err, errNotConfirmed)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("household: single\nincome:\n  employment: 900\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("household: couple\n"), 0o644))

	out := mustRun(t, "", "validate", good)
	assert.Contains(t, out, "is valid")

	_, err := run(t, "", "validate", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := run(t, "", "adjustment", "show", "-f", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestThreshold(t *testing.T) {
	rows := decodeList(t, mustRun(t, "", "threshold", "-f", "json"))
	require.Len(t, rows, 2)
	assert.Equal(t, "3441.5", rows[0]["income"])
	assert.Equal(t, "5100.5", rows[1]["income"])

	rows = decodeList(t, mustRun(t, "", "threshold", "--household", "single", "--target", "1000", "-f", "json"))
	require.Len(t, rows, 1)
	assert.Equal(t, "2441.5", rows[0]["income"])

	_, err := run(t, "", "threshold", "--household", "couple")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare(t *testing.T) {
	out := mustRun(t, "", "compare", "1000", "1500", "4000", "-f", "json")
	set := decodeMap(t, out)
	assert.Equal(t, "$1000.00", set["baseScenarioName"])
	alts := set["alternativeResults"].([]any)
	require.Len(t, alts, 2)
	first := alts[0].(map[string]any)
	assert.Equal(t, "1687", first["benefit"])
	assert.Equal(t, "286", first["totalDiffFromBase"])
	assert.Len(t, set["recommendations"], 3)

	out = mustRun(t, "", "compare", "1000", "1500")
	assert.Contains(t, out, "INCOME COMPARISON")

	_, err := run(t, "", "compare", "1000")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, "", "compare", "1000", "1500", "--household", "couple")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare_ScenariosFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base:
  name: now
  household: family
  income:
    employment: 2000
alternatives:
  - name: more hours
    income:
      employment: 3000
`), 0o644))

	set := decodeMap(t, mustRun(t, "", "compare", "--scenarios", path, "-f", "json"))
	assert.Equal(t, "now", set["baseScenarioName"])
	alt := set["alternativeResults"].([]any)[0].(map[string]any)
	assert.Equal(t, "more hours", alt["scenarioName"])
	assert.Equal(t, "family", alt["household"])

	_, err := run(t, "", "compare", "1000", "--scenarios", path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare_Alternatives(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")

	set := decodeMap(t, mustRun(t, state, "compare", "1000",
		"--alt", "add_income:amount=500",
		"--alt", "stop_work",
		"-f", "json"))
	alts := set["alternativeResults"].([]any)
	require.Len(t, alts, 2)
	first := alts[0].(map[string]any)
	assert.Equal(t, "add $500.00 employment", first["scenarioName"])
	assert.Equal(t, "1687", first["benefit"])
	assert.Equal(t, "0", alts[1].(map[string]any)["totalIncome"])
	assert.Equal(t, "1901", alts[1].(map[string]any)["benefit"])

	mustRun(t, state, "calculate", "--employment", "1500", "--save")
	set = decodeMap(t, mustRun(t, state, "compare", "--alt", "set_income:amount=1000", "-f", "json"))
	assert.Equal(t, "saved inputs", set["baseScenarioName"])
	assert.Equal(t, "1687", set["baseResult"].(map[string]any)["benefit"])
	alt := set["alternativeResults"].([]any)[0].(map[string]any)
	assert.Equal(t, "employment at $1000.00", alt["scenarioName"])
	assert.Equal(t, "1901", alt["benefit"])

	_, err := run(t, state, "compare", "--alt", "bogus:amount=1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
