// Package registry loads operator-maintained input files: the canonical
// entity registry and optional feed snapshots.
package registry

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// Load reads registry entities from a JSON, YAML, or CSV file, detected by
// extension. File order is preserved (matching is order-sensitive on ties);
// duplicate ids are last-write-wins; rows without id or name are dropped.
func Load(path string) ([]model.Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open %s", path)
	}
	defer f.Close()

	var entities []model.Entity
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entities, err = decodeJSON(f)
	case ".yaml", ".yml":
		entities, err = decodeYAML(f)
	case ".csv":
		entities, err = decodeCSV(f)
	default:
		return nil, eris.Errorf("registry: unsupported file type %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	return dedupe(entities), nil
}

func decodeJSON(r io.Reader) ([]model.Entity, error) {
	var entities []model.Entity
	if err := json.NewDecoder(r).Decode(&entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func decodeYAML(r io.Reader) ([]model.Entity, error) {
	var entities []model.Entity
	if err := yaml.NewDecoder(r).Decode(&entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func decodeCSV(r io.Reader) ([]model.Entity, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	idCol, nameCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "id", "company_id":
			idCol = i
		case "name", "company_name":
			nameCol = i
		}
	}
	if idCol < 0 || nameCol < 0 {
		return nil, eris.New("csv needs id and name columns")
	}

	var entities []model.Entity
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return entities, nil
		}
		if err != nil {
			return nil, err
		}
		if idCol >= len(record) || nameCol >= len(record) {
			continue
		}
		entities = append(entities, model.Entity{
			ID:   strings.TrimSpace(record[idCol]),
			Name: strings.TrimSpace(record[nameCol]),
		})
	}
}

func dedupe(entities []model.Entity) []model.Entity {
	lastAt := make(map[string]int, len(entities))
	for i, e := range entities {
		lastAt[e.ID] = i
	}
	out := entities[:0:0]
	for i, e := range entities {
		if e.ID == "" || e.Name == "" || lastAt[e.ID] != i {
			continue
		}
		out = append(out, e)
	}
	return out
}
