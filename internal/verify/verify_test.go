package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	mappings := map[string]string{
		"AAPL": "co1",
		"STZ":  "CO2", // id compare is case-insensitive
		"EXN":  "co3",
	}
	master := map[string]string{
		"AAPL": "co1",
		"STZ":  "co2",
		"EXN":  "co9",
		"RKLB": "co4",
	}

	r := Compare(mappings, master)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Correct)
	require.Len(t, r.Wrong, 1)
	assert.Equal(t, Mismatch{Ticker: "EXN", Expected: "co9", Got: "co3"}, r.Wrong[0])
	assert.Equal(t, []string{"RKLB"}, r.Missing)
	assert.InDelta(t, 50.0, r.Accuracy(), 0.001)
}

func TestCompareUppercaseFallback(t *testing.T) {
	mappings := map[string]string{"AAPL": "co1"}
	master := map[string]string{"aapl": "co1"}

	r := Compare(mappings, master)
	assert.Equal(t, 1, r.Correct)
}

func TestCompareEmptyMaster(t *testing.T) {
	r := Compare(map[string]string{"AAPL": "co1"}, nil)
	assert.Zero(t, r.Total)
	assert.Zero(t, r.Accuracy())
}

func TestReportSummary(t *testing.T) {
	r := &Report{
		Total:   2,
		Correct: 1,
		Wrong:   []Mismatch{{Ticker: "EXN", Expected: "co9", Got: "co3"}},
	}
	out := r.Summary()
	assert.Contains(t, out, "Accuracy:    50.0%")
	assert.Contains(t, out, "EXN")
}

func TestLoadMasterCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	content := "ticker,expected_company_id\naapl,co1\nSTZ,co2\n,missing\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	master, err := LoadMaster(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"AAPL": "co1", "STZ": "co2"}, master)
}

func TestLoadMasterCSVMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	_, err := LoadMaster(path)
	assert.Error(t, err)
}
