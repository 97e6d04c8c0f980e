package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ticker-crosswalk/internal/engine"
	"github.com/sells-group/ticker-crosswalk/internal/model"
	"github.com/sells-group/ticker-crosswalk/internal/registry"
	"github.com/sells-group/ticker-crosswalk/internal/store"
	"github.com/sells-group/ticker-crosswalk/pkg/finnhub"
)

var (
	mapFeedFile     string
	mapRegistryPath string
	mapNoResume     bool
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Match the ticker feed against the registry and persist mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		registryPath := cfg.Registry.Path
		if mapRegistryPath != "" {
			registryPath = mapRegistryPath
		}
		if mapFeedFile == "" && cfg.Feed.APIKey == "" {
			return eris.New("feed api key is required (CROSSWALK_FEED_API_KEY) unless --feed-file is set")
		}

		var (
			feed     []model.FeedEntry
			entities []model.Entity
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			if mapFeedFile != "" {
				feed, err = registry.LoadFeed(mapFeedFile)
				return eris.Wrap(err, "load feed file")
			}
			feed, err = finnhub.New(cfg.Feed).Symbols(gctx, cfg.Feed.Exchange)
			return eris.Wrap(err, "fetch feed")
		})
		g.Go(func() error {
			var err error
			entities, err = registry.Load(registryPath)
			return eris.Wrap(err, "load registry")
		})
		if err := g.Wait(); err != nil {
			return err
		}
		if len(feed) == 0 {
			return eris.New("feed is empty; refusing to run")
		}
		if len(entities) == 0 {
			return eris.New("registry is empty; refusing to run")
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		prior := map[string]string{}
		if !mapNoResume {
			if prior, err = st.LoadMappings(ctx); err != nil {
				return eris.Wrap(err, "load prior mappings")
			}
		}

		eng := engine.New(engine.Options{
			AutoMatchThreshold:  cfg.Matcher.AutoMatchThreshold,
			MinPromptConfidence: cfg.Matcher.MinPromptConfidence,
			TopN:                cfg.Matcher.TopN,
			AcronymExpansions:   cfg.Matcher.AcronymExpansions,
			HardNegativePairs:   cfg.Matcher.HardNegativePairs,
		}, engine.NewTerminalPrompter(), st)

		res, err := eng.Run(ctx, feed, entities, prior)
		if err != nil {
			return eris.Wrap(err, "run matcher")
		}
		if err := st.SaveMappings(ctx, res.Mappings); err != nil {
			return eris.Wrap(err, "save mappings")
		}

		printMapSummary(res)
		zap.L().Info("map complete", zap.Int("mappings", len(res.Mappings)))
		return nil
	},
}

func printMapSummary(res *engine.Result) {
	if len(res.Mappings) == 0 {
		fmt.Println("No mappings produced.")
		return
	}
	fmt.Printf("Processed:  %d\n", res.Processed)
	fmt.Printf("Exact:      %d\n", res.Exact)
	fmt.Printf("Core exact: %d\n", res.CoreExact)
	fmt.Printf("Auto fuzzy: %d\n", res.AutoFuzzy)
	fmt.Printf("Manual:     %d\n", res.Manual)
	fmt.Printf("Rejected:   %d (id equals ticker)\n", res.RejectedSelf)
	fmt.Printf("Skipped:    %d\n", res.Skipped)
	fmt.Printf("Mappings:   %d total\n", len(res.Mappings))
}

func init() {
	mapCmd.Flags().StringVar(&mapFeedFile, "feed-file", "", "load feed entries from a JSON/CSV file instead of the exchange API")
	mapCmd.Flags().StringVar(&mapRegistryPath, "registry", "", "registry file path (overrides config)")
	mapCmd.Flags().BoolVar(&mapNoResume, "no-resume", false, "ignore previously persisted mappings")
	rootCmd.AddCommand(mapCmd)
}
