package registry

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// LoadFeed reads a feed snapshot from a JSON or CSV file, for offline runs
// that bypass the exchange API. Order is preserved; rows without ticker or
// name are dropped; duplicate names collapse to the last ticker seen, same
// as the live feed.
func LoadFeed(path string) ([]model.FeedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open feed %s", path)
	}
	defer f.Close()

	var entries []model.FeedEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.NewDecoder(f).Decode(&entries)
	case ".csv":
		entries, err = decodeFeedCSV(f)
	default:
		return nil, eris.Errorf("registry: unsupported feed file type %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "registry: parse feed %s", path)
	}
	return collapseFeed(entries), nil
}

func decodeFeedCSV(r io.Reader) ([]model.FeedEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tickerCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "ticker", "symbol":
			tickerCol = i
		case "name", "description":
			nameCol = i
		}
	}
	if tickerCol < 0 || nameCol < 0 {
		return nil, eris.New("csv needs ticker and name columns")
	}

	var entries []model.FeedEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		if tickerCol >= len(record) || nameCol >= len(record) {
			continue
		}
		entries = append(entries, model.FeedEntry{
			Ticker: strings.TrimSpace(record[tickerCol]),
			Name:   strings.TrimSpace(record[nameCol]),
		})
	}
}

func collapseFeed(entries []model.FeedEntry) []model.FeedEntry {
	lastAt := make(map[string]int, len(entries))
	kept := entries[:0:0]
	for _, e := range entries {
		e.Ticker = strings.TrimSpace(e.Ticker)
		e.Name = strings.TrimSpace(e.Name)
		if e.Ticker == "" || e.Name == "" {
			continue
		}
		if i, seen := lastAt[e.Name]; seen {
			kept[i].Ticker = e.Ticker
			continue
		}
		lastAt[e.Name] = len(kept)
		kept = append(kept, e)
	}
	return kept
}
