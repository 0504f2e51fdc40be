package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-ingest/internal/normalize"
)

var checkWebsiteURL string

var checkWebsiteCmd = &cobra.Command{
	Use:   "check-website",
	Short: "Score a company website the way the ingest gate does",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("check-website"); err != nil {
			return err
		}

		target := normalize.WebsiteURL(checkWebsiteURL)
		if target == "" {
			return eris.Errorf("check-website: %q is not a website", checkWebsiteURL)
		}

		cache := initCache(ctx, cfg)
		if cache != nil {
			defer cache.Close() //nolint:errcheck
		}

		check := newWebsiteChecker(cfg, cache).Check(ctx, target)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(check); err != nil {
			return eris.Wrap(err, "write website check")
		}
		return nil
	},
}

func init() {
	checkWebsiteCmd.Flags().StringVar(&checkWebsiteURL, "url", "", "website URL or bare domain (required)")
	_ = checkWebsiteCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(checkWebsiteCmd)
}
