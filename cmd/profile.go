package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ticker-crosswalk/pkg/finnhub"
)

var (
	profileSymbol string
	profileISIN   string
	profileCUSIP  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Look up a single security profile from the exchange API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Feed.APIKey == "" {
			return eris.New("feed api key is required (CROSSWALK_FEED_API_KEY)")
		}
		if profileSymbol == "" && profileISIN == "" && profileCUSIP == "" {
			return eris.New("one of --symbol, --isin, or --cusip is required")
		}

		profile, err := finnhub.New(cfg.Feed).Profile(ctx, finnhub.ProfileQuery{
			Symbol: profileSymbol,
			ISIN:   profileISIN,
			CUSIP:  profileCUSIP,
		})
		if err != nil {
			return eris.Wrap(err, "fetch profile")
		}

		out, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return eris.Wrap(err, "encode profile")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&profileSymbol, "symbol", "", "ticker symbol")
	profileCmd.Flags().StringVar(&profileISIN, "isin", "", "ISIN identifier")
	profileCmd.Flags().StringVar(&profileCUSIP, "cusip", "", "CUSIP identifier")
	rootCmd.AddCommand(profileCmd)
}
