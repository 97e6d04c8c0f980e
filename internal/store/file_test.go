package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewFile(filepath.Join(dir, "mappings.json"), filepath.Join(dir, "audit.csv"))
	require.NoError(t, s.Migrate(context.Background()))
	return s, dir
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	s, _ := newTestFileStore(t)

	mappings, err := s.LoadMappings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestFileStorePutAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, s.PutMapping(ctx, "AAPL", "co1"))
	require.NoError(t, s.PutMapping(ctx, "STZ", "co2"))
	require.NoError(t, s.PutMapping(ctx, "AAPL", "co9")) // overwrite

	// A fresh store reading the same file sees the final state.
	reopened := NewFile(filepath.Join(dir, "mappings.json"), "")
	mappings, err := reopened.LoadMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"AAPL": "co9", "STZ": "co2"}, mappings)
}

func TestFileStoreSaveMappingsReplacesState(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, s.PutMapping(ctx, "OLD", "co0"))
	require.NoError(t, s.SaveMappings(ctx, map[string]string{"AAPL": "co1"}))

	reopened := NewFile(filepath.Join(dir, "mappings.json"), "")
	mappings, err := reopened.LoadMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"AAPL": "co1"}, mappings)
}

func TestFileStoreAuditLog(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestFileStore(t)

	require.NoError(t, s.AppendDecision(ctx, model.Decision{
		Ticker: "AAPL", FeedName: "Apple Inc.", Kind: model.DecisionExact,
		MatchedName: "Apple Inc.", MatchedID: "co1",
	}))
	require.NoError(t, s.AppendDecision(ctx, model.Decision{
		Ticker: "ZC", FeedName: "Zenith Carbide", Kind: model.DecisionSkipped,
		Score: model.ScoreOf(82.4), Notes: "user skipped",
	}))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(filepath.Join(dir, "audit.csv"))
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 4) // comment, header, two rows
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Equal(t, "ticker,feed_name,decision_kind,matched_registry_name,matched_id,score,notes", lines[1])
	assert.Contains(t, lines[2], "exact")
	assert.Contains(t, lines[3], "82.4")
	assert.Contains(t, lines[3], "user skipped")
}

func TestFileStoreAuditDisabled(t *testing.T) {
	dir := t.TempDir()
	s := NewFile(filepath.Join(dir, "mappings.json"), "")

	require.NoError(t, s.AppendDecision(context.Background(), model.Decision{Ticker: "AAPL", Kind: model.DecisionSkipped}))
	require.NoError(t, s.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "bolt"})
	assert.Error(t, err)
}

func TestOpenDefaultsToFile(t *testing.T) {
	s, err := Open(context.Background(), Config{MappingsPath: filepath.Join(t.TempDir(), "m.json")})
	require.NoError(t, err)
	_, ok := s.(*FileStore)
	assert.True(t, ok)
}
