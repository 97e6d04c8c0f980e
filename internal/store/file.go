package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

var auditHeader = []string{"ticker", "feed_name", "decision_kind", "matched_registry_name", "matched_id", "score", "notes"}

// FileStore keeps mappings in a flat JSON object and the audit log in an
// append-only CSV. Every PutMapping rewrites the JSON atomically
// (temp+rename), so a crash leaves either the old or the new file, never a
// torn one.
type FileStore struct {
	mappingsPath string
	auditPath    string

	mappings map[string]string
	audit    *os.File
	auditCSV *csv.Writer
}

// NewFile creates a file-backed store. auditPath may be empty to disable the
// audit log.
func NewFile(mappingsPath, auditPath string) *FileStore {
	return &FileStore{mappingsPath: mappingsPath, auditPath: auditPath}
}

// Migrate ensures parent directories exist.
func (s *FileStore) Migrate(context.Context) error {
	for _, p := range []string{s.mappingsPath, s.auditPath} {
		if p == "" {
			continue
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "file store: mkdir %s", dir)
			}
		}
	}
	return nil
}

func (s *FileStore) LoadMappings(context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.mappingsPath)
	if os.IsNotExist(err) {
		s.mappings = map[string]string{}
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "file store: read %s", s.mappingsPath)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "file store: parse %s", s.mappingsPath)
	}
	if m == nil {
		m = map[string]string{}
	}
	s.mappings = m
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) PutMapping(ctx context.Context, ticker, companyID string) error {
	if s.mappings == nil {
		if _, err := s.LoadMappings(ctx); err != nil {
			return err
		}
	}
	s.mappings[ticker] = companyID
	return s.write(s.mappings)
}

func (s *FileStore) SaveMappings(_ context.Context, mappings map[string]string) error {
	s.mappings = make(map[string]string, len(mappings))
	for k, v := range mappings {
		s.mappings[k] = v
	}
	return s.write(s.mappings)
}

func (s *FileStore) write(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "file store: marshal mappings")
	}
	tmp := s.mappingsPath + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "file store: write %s", tmp)
	}
	return eris.Wrapf(os.Rename(tmp, s.mappingsPath), "file store: rename %s", s.mappingsPath)
}

func (s *FileStore) AppendDecision(_ context.Context, d model.Decision) error {
	if s.auditPath == "" {
		return nil
	}
	if s.audit == nil {
		f, err := os.OpenFile(s.auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return eris.Wrapf(err, "file store: open audit log %s", s.auditPath)
		}
		s.audit = f
		s.auditCSV = csv.NewWriter(f)
		if info, err := f.Stat(); err == nil && info.Size() == 0 {
			fmt.Fprintf(f, "# ticker match log %s\n", time.Now().UTC().Format(time.RFC3339))
			if err := s.auditCSV.Write(auditHeader); err != nil {
				return eris.Wrap(err, "file store: write audit header")
			}
		}
	}
	score := ""
	if d.Score != nil {
		score = strconv.FormatFloat(*d.Score, 'f', 1, 64)
	}
	if err := s.auditCSV.Write([]string{d.Ticker, d.FeedName, string(d.Kind), d.MatchedName, d.MatchedID, score, d.Notes}); err != nil {
		return eris.Wrap(err, "file store: write audit row")
	}
	s.auditCSV.Flush()
	return eris.Wrap(s.auditCSV.Error(), "file store: flush audit row")
}

func (s *FileStore) Close() error {
	if s.audit == nil {
		return nil
	}
	s.auditCSV.Flush()
	return eris.Wrap(s.audit.Close(), "file store: close audit log")
}
