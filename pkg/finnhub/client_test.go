package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL, RateLimit: 1000})
}

func TestSymbols(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/symbol", r.URL.Path)
		assert.Equal(t, "US", r.URL.Query().Get("exchange"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Write([]byte(`[
			{"description": "Apple Inc.", "symbol": "AAPL", "type": "Common Stock"},
			{"description": "S&P 500", "symbol": "SPX", "type": "INDEX"},
			{"description": "Constellation Brands", "symbol": "STZ", "type": "Common Stock"}
		]`))
	})

	entries, err := c.Symbols(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, []model.FeedEntry{
		{Ticker: "AAPL", Name: "Apple Inc."},
		{Ticker: "STZ", Name: "Constellation Brands"},
	}, entries)
}

func TestSymbolsCollapsesDuplicateNames(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"description": "Same Name", "symbol": "AAA", "type": "Common Stock"},
			{"description": "Other Name", "symbol": "BBB", "type": "Common Stock"},
			{"description": "Same Name", "symbol": "CCC", "type": "Common Stock"},
			{"description": "", "symbol": "DDD", "type": "Common Stock"}
		]`))
	})

	entries, err := c.Symbols(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, []model.FeedEntry{
		{Ticker: "CCC", Name: "Same Name"},
		{Ticker: "BBB", Name: "Other Name"},
	}, entries)
}

func TestSymbolsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Symbols(context.Background(), "US")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestProfileBySymbol(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"name": "Apple Inc", "ticker": "AAPL"}`))
	})

	profile, err := c.Profile(context.Background(), ProfileQuery{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", profile["name"])
}

func TestProfileByISIN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "US0378331005", r.URL.Query().Get("isin"))
		w.Write([]byte(`{"name": "Apple Inc"}`))
	})

	_, err := c.Profile(context.Background(), ProfileQuery{ISIN: "US0378331005"})
	assert.NoError(t, err)
}

func TestProfileEmptyQuery(t *testing.T) {
	c := New(Config{APIKey: "test-key"})

	_, err := c.Profile(context.Background(), ProfileQuery{})
	assert.Error(t, err)
}
