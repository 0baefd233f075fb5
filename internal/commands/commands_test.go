package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/charts"
	"finlens/internal/models"
	"finlens/internal/services/storage"
	"finlens/internal/testutil"
)

// execute runs the root command with args and returns stdout
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func samplePath() string {
	return filepath.Join(testutil.TestDataDir(), "sample_statement.csv")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "finlens "), out)
}

func TestAnalyzeSummary(t *testing.T) {
	out, err := execute(t, "", "analyze", samplePath())
	require.NoError(t, err)

	assert.Contains(t, out, "Statement:     sample_statement.csv")
	assert.Contains(t, out, "Transactions:  43")
	assert.Contains(t, out, "Top categories:")
	assert.Contains(t, out, "housing")
	assert.Contains(t, out, "$4,350.00")
}

func TestAnalyzeJSONWithRules(t *testing.T) {
	rules := filepath.Join(testutil.TestDataDir(), "categories.yaml")
	out, err := execute(t, "", "analyze", "--json", "--rules", rules, "--top", "3", samplePath())
	require.NoError(t, err)

	var a models.SpendingAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Len(t, a.Transactions, 43)
	assert.Len(t, a.TopCategories, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, a.MonthlySpending.Months())

	fitness, ok := a.SpendingByCategory.Get("fitness")
	require.True(t, ok)
	assert.InDelta(t, 90.0, fitness, 0.001)
}

func TestAnalyzeDedupAcrossStatements(t *testing.T) {
	out, err := execute(t, "", "analyze", "--json", "--dedup", samplePath(), samplePath())
	require.NoError(t, err)

	var a models.SpendingAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Len(t, a.Transactions, 43)
	assert.Equal(t, 43, a.DuplicatesRemoved)
}

func TestAnalyzeErrors(t *testing.T) {
	_, err := execute(t, "", "analyze")
	assert.Error(t, err)

	_, err = execute(t, "", "analyze", "statement.pdf")
	assert.Error(t, err)

	_, err = execute(t, "", "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

const payload = `{"spending_by_category": {"Food": 50, "Rent": 50}, "monthly_spending": {"Jan": {"Food": 10}, "Feb": {"Rent": 20}}}`

func TestChartCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	out, err := execute(t, "", "chart", path)
	require.NoError(t, err)

	var all map[string]charts.Config
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Equal(t, "pie", all[charts.KindCategory].Type)
	assert.Equal(t, "bar", all[charts.KindMonthly].Type)
	assert.Equal(t, []string{"Jan", "Feb"}, all[charts.KindMonthly].Data.Labels)
}

func TestChartCommandStdin(t *testing.T) {
	out, err := execute(t, payload, "chart", "--kind", "category", "-")
	require.NoError(t, err)

	var cfg charts.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "pie", cfg.Type)
	assert.Equal(t, []string{"Food", "Rent"}, cfg.Data.Labels)
}

func TestChartCommandErrors(t *testing.T) {
	_, err := execute(t, `{"spending_by_category": {}}`, "chart", "-")
	assert.ErrorIs(t, err, charts.ErrMalformedChartData)

	_, err = execute(t, payload, "chart", "--kind", "radar", "-")
	assert.ErrorIs(t, err, charts.ErrUnknownKind)
}

func TestEncryptDecrypt(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)
	_, err = store.Save("abc", "statement.csv", []byte("Date,Description,Amount\n"))
	require.NoError(t, err)

	_, err = execute(t, "correct horse\nwrong horse\n", "encrypt", "--dir", dir)
	assert.ErrorIs(t, err, errPassphraseMismatch)

	_, err = execute(t, "correct horse\ncorrect horse\n", "encrypt", "--dir", dir)
	require.NoError(t, err)

	reopened, err := storage.New(dir)
	require.NoError(t, err)
	assert.True(t, reopened.IsEncrypted())

	_, err = execute(t, "battery staple\n", "decrypt", "--dir", dir)
	assert.ErrorIs(t, err, storage.ErrWrongPassphrase)

	_, err = execute(t, "correct horse", "decrypt", "--dir", dir)
	require.NoError(t, err)

	reopened, err = storage.New(dir)
	require.NoError(t, err)
	assert.False(t, reopened.IsEncrypted())
	data, err := reopened.Read("abc_statement.csv")
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount\n", string(data))
}
