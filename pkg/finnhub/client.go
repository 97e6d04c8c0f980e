// Package finnhub is a minimal client for the Finnhub stock API, covering
// the two endpoints the crosswalk pipeline needs: the exchange symbol
// directory and single-security profile lookup.
package finnhub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Config configures the client.
type Config struct {
	APIKey          string   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL         string   `yaml:"base_url" mapstructure:"base_url"`
	Exchange        string   `yaml:"exchange" mapstructure:"exchange"`
	TimeoutSecs     int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit       float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	SkipSymbolTypes []string `yaml:"skip_symbol_types" mapstructure:"skip_symbol_types"`
}

// Client calls the Finnhub API with a bounded timeout and a rate limiter.
// Failures are fatal to the caller: a partial symbol set would silently
// corrupt matching decisions downstream.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	limiter   *rate.Limiter
	skipTypes map[string]bool
}

// New creates a Client from config, applying defaults for base URL (the
// production API), timeout (30s), rate limit (10 req/s), and skipped symbol
// types (index listings).
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 10
	}
	skipTypes := map[string]bool{"index": true, "idx": true}
	if cfg.SkipSymbolTypes != nil {
		skipTypes = make(map[string]bool, len(cfg.SkipSymbolTypes))
		for _, t := range cfg.SkipSymbolTypes {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				skipTypes[t] = true
			}
		}
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    cfg.APIKey,
		limiter:   rate.NewLimiter(rate.Limit(limit), 1),
		skipTypes: skipTypes,
	}
}

type symbolRow struct {
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
}

// Symbols fetches the full symbol directory for an exchange as ordered feed
// entries. Index listings (and any other configured symbol types) are
// skipped; duplicate names collapse to the last ticker seen, so the engine
// receives at most one entry per name.
func (c *Client) Symbols(ctx context.Context, exchange string) ([]model.FeedEntry, error) {
	q := url.Values{"exchange": {exchange}, "token": {c.apiKey}}
	var rows []symbolRow
	if err := c.get(ctx, "/stock/symbol", q, &rows); err != nil {
		return nil, err
	}

	var skipped int
	lastAt := make(map[string]int, len(rows))
	kept := make([]symbolRow, 0, len(rows))
	for _, row := range rows {
		if t := strings.ToLower(strings.TrimSpace(row.Type)); t != "" && c.skipTypes[t] {
			skipped++
			continue
		}
		name := strings.TrimSpace(row.Description)
		ticker := strings.TrimSpace(row.Symbol)
		if name == "" || ticker == "" {
			continue
		}
		if _, seen := lastAt[name]; !seen {
			kept = append(kept, symbolRow{Description: name, Symbol: ticker})
		}
		lastAt[name] = len(kept) - 1
		kept[lastAt[name]].Symbol = ticker
	}

	entries := make([]model.FeedEntry, len(kept))
	for i, row := range kept {
		entries[i] = model.FeedEntry{Ticker: row.Symbol, Name: row.Description}
	}
	zap.L().Info("fetched feed symbols",
		zap.String("exchange", exchange),
		zap.Int("entries", len(entries)),
		zap.Int("skipped_types", skipped),
	)
	return entries, nil
}

// ProfileQuery selects a security for Profile; exactly one field must be set.
type ProfileQuery struct {
	Symbol string
	ISIN   string
	CUSIP  string
}

// Profile fetches a company profile by symbol, ISIN, or CUSIP and returns
// the raw document.
func (c *Client) Profile(ctx context.Context, query ProfileQuery) (map[string]any, error) {
	q := url.Values{"token": {c.apiKey}}
	switch {
	case query.Symbol != "":
		q.Set("symbol", query.Symbol)
	case query.ISIN != "":
		q.Set("isin", query.ISIN)
	case query.CUSIP != "":
		q.Set("cusip", query.CUSIP)
	default:
		return nil, eris.New("finnhub: profile query needs symbol, isin, or cusip")
	}
	var profile map[string]any
	if err := c.get(ctx, "/stock/profile", q, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "finnhub: rate limit wait")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrapf(err, "finnhub: build request %s", path)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "finnhub: GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return eris.Errorf("finnhub: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "finnhub: decode %s", path)
	}
	return nil
}
