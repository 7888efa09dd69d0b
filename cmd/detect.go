package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ravensec/xssentinel/lib"
	"github.com/ravensec/xssentinel/pkg/browser"
	xssconfig "github.com/ravensec/xssentinel/pkg/config"
	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/orchestrator"
	"github.com/ravensec/xssentinel/pkg/reducer"
	"github.com/ravensec/xssentinel/pkg/store/cache"
	"github.com/ravensec/xssentinel/pkg/store/effectiveness"
)

var (
	detectBrowser         string
	detectSubmitSelector  string
	detectVerifyExecution bool
	detectCacheEnabled    bool
	detectEffectiveness   bool
	detectSmartLimit      int
	detectRequireExec     bool
)

var detectCmd = &cobra.Command{
	Use:   "detect URL LOCATOR",
	Short: "Run one XSS detection job against a target input",
	Args:  cobra.ExactArgs(2),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectBrowser, "browser", "chromium", "engine: chromium|firefox|webkit")
	detectCmd.Flags().StringVar(&detectSubmitSelector, "submit-selector", "", "first strategy in the submission fallback chain")
	detectCmd.Flags().BoolVar(&detectVerifyExecution, "verify-execution", true, "if false, executed is always false")
	detectCmd.Flags().BoolVar(&detectCacheEnabled, "cache", true, "use the on-disk result cache")
	detectCmd.Flags().BoolVar(&detectEffectiveness, "use-effective-payloads", true, "rank payloads by historical effectiveness")
	detectCmd.Flags().IntVar(&detectSmartLimit, "limit", 20, "maximum payloads tested for this job")
	detectCmd.Flags().BoolVar(&detectRequireExec, "require-execution", false, "drop results that only reflected without executing")
}

func runDetect(cmd *cobra.Command, args []string) error {
	targetURL, locator := args[0], args[1]

	opts := xssconfig.OptionsFromViper()
	if cmd.Flags().Changed("browser") {
		opts.Browser = model.Browser(detectBrowser)
	}
	if cmd.Flags().Changed("submit-selector") {
		opts.SubmitSelector = detectSubmitSelector
	}
	if cmd.Flags().Changed("verify-execution") {
		opts.VerifyExecution = detectVerifyExecution
	}
	if cmd.Flags().Changed("cache") {
		opts.Cache.Enabled = detectCacheEnabled
	}
	if cmd.Flags().Changed("use-effective-payloads") {
		opts.Effectiveness.UseEffectivePayloads = detectEffectiveness
	}
	if cmd.Flags().Changed("limit") {
		opts.SmartPayloadSelection.Limit = detectSmartLimit
	}

	dir := stateDir()
	cacheStore, err := cache.New(dir + "/cache")
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	effStore, err := effectiveness.Open(dir + "/effectiveness.json")
	if err != nil {
		return fmt.Errorf("open effectiveness store: %w", err)
	}

	sessions := browser.NewManager(dir + "/sessions")
	engine := orchestrator.NewEngine(sessions, orchestrator.Stores{Cache: cacheStore, Effectiveness: effStore})

	results, err := engine.DetectXSS(targetURL, locator, nil, opts)
	if err != nil {
		log.Error().Err(err).Str("url", targetURL).Msg("detection job failed")
		return err
	}

	for i, r := range results {
		results[i] = reducer.Score(r)
	}
	if detectRequireExec {
		filtered := results[:0]
		for _, r := range results {
			if r.Reflected && !r.Executed {
				continue
			}
			filtered = append(filtered, r)
		}
		results = filtered
	}

	formatType, err := lib.ParseFormatType(format)
	if err != nil {
		return fmt.Errorf("parse format: %w", err)
	}
	out, err := lib.FormatOutput(resultViews(results), formatType)
	if err != nil {
		return fmt.Errorf("format results: %w", err)
	}
	fmt.Println(out)

	vulnerable := 0
	for _, r := range results {
		if r.Reflected || r.Executed {
			vulnerable++
		}
	}
	log.Info().Int("tested", len(results)).Int("vulnerable", vulnerable).Msg("detection job complete")
	return nil
}
