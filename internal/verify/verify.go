// Package verify compares persisted ticker mappings against an
// operator-maintained master list of expected assignments.
package verify

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Mismatch is one ticker whose mapping disagrees with the master list.
type Mismatch struct {
	Ticker   string
	Expected string
	Got      string
}

// Report summarizes a comparison run.
type Report struct {
	Total   int
	Correct int
	Wrong   []Mismatch
	Missing []string // in master list but absent from mappings
}

// Accuracy returns the correct share in percent.
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// Summary renders the report for the terminal.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Master list: %d tickers\n", r.Total)
	fmt.Fprintf(&b, "Correct:     %d\n", r.Correct)
	fmt.Fprintf(&b, "Wrong:       %d\n", len(r.Wrong))
	fmt.Fprintf(&b, "Missing:     %d\n", len(r.Missing))
	fmt.Fprintf(&b, "Accuracy:    %.1f%%\n", r.Accuracy())
	if len(r.Wrong) > 0 {
		b.WriteString("\nWrong mappings (ticker | expected | got):\n")
		for _, w := range r.Wrong {
			fmt.Fprintf(&b, "  %s  expected %s  got %s\n", w.Ticker, w.Expected, w.Got)
		}
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "\nMissing in mappings: %s\n", strings.Join(r.Missing, ", "))
	}
	return b.String()
}

// Compare checks every master-list expectation against the mappings. Ids are
// compared case-insensitively; tickers are matched as-is then uppercased.
func Compare(mappings, master map[string]string) *Report {
	r := &Report{Total: len(master)}
	tickers := make([]string, 0, len(master))
	for t := range master {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		expected := master[ticker]
		got, ok := mappings[ticker]
		if !ok {
			got, ok = mappings[strings.ToUpper(ticker)]
		}
		switch {
		case !ok:
			r.Missing = append(r.Missing, ticker)
		case strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(expected)):
			r.Correct++
		default:
			r.Wrong = append(r.Wrong, Mismatch{Ticker: ticker, Expected: expected, Got: got})
		}
	}
	return r
}

// LoadMaster reads a master list from CSV or XLSX. Column headers are
// matched loosely: ticker/symbol for the key, expected_company_id/company_id
// for the value.
func LoadMaster(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadMasterXLSX(path)
	default:
		return loadMasterCSV(path)
	}
}

func loadMasterCSV(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "verify: read header %s", path)
	}
	tickerCol, idCol := masterColumns(header)
	if tickerCol < 0 || idCol < 0 {
		return nil, eris.New("verify: master list needs ticker and expected_company_id columns")
	}

	master := map[string]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "verify: read %s", path)
		}
		addMasterRow(master, record, tickerCol, idCol)
	}
	return master, nil
}

func loadMasterXLSX(path string) (map[string]string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "verify: open %s", path)
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.Errorf("verify: no sheets in %s", path)
	}
	sheet := wb.Sheets[0]
	if len(sheet.Rows) == 0 {
		return map[string]string{}, nil
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = cell.String()
	}
	tickerCol, idCol := masterColumns(header)
	if tickerCol < 0 || idCol < 0 {
		return nil, eris.New("verify: master list needs ticker and expected_company_id columns")
	}

	master := map[string]string{}
	for _, row := range sheet.Rows[1:] {
		record := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			record[i] = cell.String()
		}
		addMasterRow(master, record, tickerCol, idCol)
	}
	return master, nil
}

func masterColumns(header []string) (tickerCol, idCol int) {
	tickerCol, idCol = -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "ticker", "symbol":
			tickerCol = i
		case "expected_company_id", "company_id", "companyid":
			idCol = i
		}
	}
	return tickerCol, idCol
}

func addMasterRow(master map[string]string, record []string, tickerCol, idCol int) {
	if tickerCol >= len(record) || idCol >= len(record) {
		return
	}
	ticker := strings.ToUpper(strings.TrimSpace(record[tickerCol]))
	id := strings.TrimSpace(record[idCol])
	if ticker != "" && id != "" {
		master[ticker] = id
	}
}
