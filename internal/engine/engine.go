// Package engine runs the ticker-to-entity matching pipeline: tiered
// matching, the heuristic rejection chain, disambiguation, and incremental
// persistence with a per-decision audit trail.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ticker-crosswalk/internal/match"
	"github.com/sells-group/ticker-crosswalk/internal/model"
)

// genericOverlapMinScore is the raised bar applied when the only token
// overlap between a feed name and its best candidate is generic filler.
const genericOverlapMinScore = 92

// Recorder receives accepted mappings and audit rows as the run progresses.
// PutMapping is called after every accepted decision so an interrupted run
// loses at most the in-flight entry; SaveMappings persists the full set.
type Recorder interface {
	PutMapping(ctx context.Context, ticker, companyID string) error
	AppendDecision(ctx context.Context, d model.Decision) error
	SaveMappings(ctx context.Context, mappings map[string]string) error
}

// Options tune the disambiguator thresholds and exception tables.
type Options struct {
	AutoMatchThreshold  float64 // accept without prompting at or above this score
	MinPromptConfidence float64 // below this, skip without prompting
	TopN                int     // fuzzy candidates considered per entry
	AcronymExpansions   map[string]string
	HardNegativePairs   [][2]string
}

// Result summarizes one run.
type Result struct {
	Mappings     map[string]string
	Exact        int
	CoreExact    int
	AutoFuzzy    int
	Manual       int
	RejectedSelf int
	Skipped      int
	Processed    int
}

// Engine matches feed entries against a registry. Entries are processed
// strictly in input order, so for fixed inputs, prior state, and operator
// responses the decision sequence is fully deterministic.
type Engine struct {
	opts      Options
	prompter  Prompter
	recorder  Recorder
	negatives *match.HardNegatives
}

// New creates an Engine. The prompter handles the interactive branch; the
// recorder owns persistence and the audit log.
func New(opts Options, prompter Prompter, recorder Recorder) *Engine {
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	return &Engine{
		opts:      opts,
		prompter:  prompter,
		recorder:  recorder,
		negatives: match.NewHardNegatives(opts.HardNegativePairs),
	}
}

// Run processes every feed entry not already present in prior and returns the
// accumulated mapping set. Tickers in prior are treated as processed (resume
// semantics); the returned Mappings includes them.
func (e *Engine) Run(ctx context.Context, feed []model.FeedEntry, registry []model.Entity, prior map[string]string) (*Result, error) {
	idx := match.Build(registry, e.opts.AcronymExpansions)

	res := &Result{Mappings: make(map[string]string, len(prior)+len(feed))}
	tickerByID := make(map[string]string, len(prior))
	for t, id := range prior {
		res.Mappings[t] = id
		tickerByID[id] = t
	}

	log := zap.L().With(zap.Int("feed_entries", len(feed)), zap.Int("registry_entities", len(registry)))
	log.Info("matching started",
		zap.Float64("auto_match_threshold", e.opts.AutoMatchThreshold),
		zap.Float64("min_prompt_confidence", e.opts.MinPromptConfidence),
		zap.Int("already_mapped", len(prior)),
	)

	for _, entry := range feed {
		if _, done := res.Mappings[entry.Ticker]; done {
			continue
		}
		res.Processed++
		if err := e.processEntry(ctx, idx, entry, res, tickerByID); err != nil {
			return nil, err
		}
	}

	log.Info("matching finished",
		zap.Int("exact", res.Exact),
		zap.Int("core_exact", res.CoreExact),
		zap.Int("auto_fuzzy", res.AutoFuzzy),
		zap.Int("manual", res.Manual),
		zap.Int("rejected_self", res.RejectedSelf),
		zap.Int("skipped", res.Skipped),
		zap.Int("total_mappings", len(res.Mappings)),
	)
	return res, nil
}

func (e *Engine) processEntry(ctx context.Context, idx *match.Index, entry model.FeedEntry, res *Result, tickerByID map[string]string) error {
	if name, tier := idx.FindExact(entry.Name); tier != match.TierNone {
		kind := model.DecisionExact
		if tier == match.TierCore {
			kind = model.DecisionCoreExact
		}
		id := idx.ID(name)
		if strings.EqualFold(id, entry.Ticker) {
			res.RejectedSelf++
			return e.record(ctx, model.Decision{
				Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionRejectedSelf,
				MatchedName: name, MatchedID: id, Notes: "company id equals ticker",
			})
		}
		if tier == match.TierCore {
			res.CoreExact++
		} else {
			res.Exact++
		}
		return e.accept(ctx, res, tickerByID, model.Decision{
			Ticker: entry.Ticker, FeedName: entry.Name, Kind: kind,
			MatchedName: name, MatchedID: id,
		})
	}

	candidates := idx.TopMatches(entry.Name, e.opts.TopN)
	if len(candidates) == 0 {
		return e.skip(ctx, res, entry, nil, "no fuzzy matches")
	}

	candidates = match.FilterLeadingToken(entry.Name, candidates)
	if len(candidates) == 0 {
		return e.skip(ctx, res, entry, nil, "no matches after leading-token filter")
	}

	candidates, rejections := match.FilterContent(entry.Name, entry.Ticker, candidates, idx.IDsByName(), e.negatives)
	for _, r := range rejections {
		if err := e.record(ctx, r); err != nil {
			return err
		}
	}
	if len(candidates) == 0 {
		return e.skip(ctx, res, entry, nil, "no matches after sector, fund_vs_company, or hard_negative filter")
	}

	best := candidates[0]
	if match.OnlyGenericOverlap(entry.Name, best.Name) && best.Score < genericOverlapMinScore {
		return e.skip(ctx, res, entry, &best, "only_generic_overlap")
	}
	if match.SuspiciousGenericName(entry.Ticker, entry.Name) {
		return e.skip(ctx, res, entry, &best, "suspicious_generic_match")
	}

	if best.Score >= e.opts.AutoMatchThreshold {
		id := idx.ID(best.Name)
		switch {
		case strings.EqualFold(id, entry.Ticker):
			res.RejectedSelf++
			return e.record(ctx, model.Decision{
				Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionRejectedSelf,
				MatchedName: best.Name, MatchedID: id, Score: model.ScoreOf(best.Score),
				Notes: "company id equals ticker",
			})
		case tickerByID[id] != "":
			// The target entity already holds a mapping; a second auto
			// accept would silently collapse two tickers onto one id.
			// Escalate to the operator instead.
			if err := e.record(ctx, model.Decision{
				Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionOneToMany,
				MatchedName: best.Name, MatchedID: id, Score: model.ScoreOf(best.Score),
				Notes: "already mapped to " + tickerByID[id],
			}); err != nil {
				return err
			}
		default:
			res.AutoFuzzy++
			return e.accept(ctx, res, tickerByID, model.Decision{
				Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionAutoFuzzy,
				MatchedName: best.Name, MatchedID: id, Score: model.ScoreOf(best.Score),
			})
		}
	} else if best.Score < e.opts.MinPromptConfidence {
		return e.skip(ctx, res, entry, &best, "below min_prompt_confidence")
	}

	sel := e.prompter.Select(ctx, entry.Name, entry.Ticker, candidates)
	if sel.Interrupted {
		if err := e.skip(ctx, res, entry, &best, "interrupted during prompt"); err != nil {
			return err
		}
		return eris.Wrap(e.recorder.SaveMappings(ctx, res.Mappings), "engine: flush after interrupt")
	}
	if sel.Skip {
		return e.skip(ctx, res, entry, &best, "user skipped")
	}

	selected := candidates[sel.Index-1]
	id := idx.ID(selected.Name)
	if strings.EqualFold(id, entry.Ticker) {
		res.RejectedSelf++
		return e.record(ctx, model.Decision{
			Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionRejectedSelf,
			MatchedName: selected.Name, MatchedID: id, Score: model.ScoreOf(selected.Score),
			Notes: "company id equals ticker",
		})
	}
	res.Manual++
	return e.accept(ctx, res, tickerByID, model.Decision{
		Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionManual,
		MatchedName: selected.Name, MatchedID: id, Score: model.ScoreOf(selected.Score),
	})
}

// accept records an accepted decision and persists the mapping immediately.
func (e *Engine) accept(ctx context.Context, res *Result, tickerByID map[string]string, d model.Decision) error {
	res.Mappings[d.Ticker] = d.MatchedID
	tickerByID[d.MatchedID] = d.Ticker
	if err := e.record(ctx, d); err != nil {
		return err
	}
	return eris.Wrapf(e.recorder.PutMapping(ctx, d.Ticker, d.MatchedID), "engine: persist mapping %s", d.Ticker)
}

func (e *Engine) skip(ctx context.Context, res *Result, entry model.FeedEntry, best *model.Candidate, notes string) error {
	res.Skipped++
	d := model.Decision{Ticker: entry.Ticker, FeedName: entry.Name, Kind: model.DecisionSkipped, Notes: notes}
	if best != nil {
		d.MatchedName = best.Name
		d.Score = model.ScoreOf(best.Score)
	}
	return e.record(ctx, d)
}

func (e *Engine) record(ctx context.Context, d model.Decision) error {
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}
	return eris.Wrapf(e.recorder.AppendDecision(ctx, d), "engine: audit %s", d.Ticker)
}
