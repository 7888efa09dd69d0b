package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ravensec/xssentinel/pkg/browser"
	xssconfig "github.com/ravensec/xssentinel/pkg/config"
	"github.com/ravensec/xssentinel/pkg/crawl"
	"github.com/ravensec/xssentinel/pkg/orchestrator"
	"github.com/ravensec/xssentinel/pkg/reducer"
	"github.com/ravensec/xssentinel/pkg/store/cache"
	"github.com/ravensec/xssentinel/pkg/store/effectiveness"
)

var (
	crawlDepth    int
	crawlMaxPages int
	crawlTest     bool
)

// crawlCmd is the external discovery collaborator named in §6: it walks
// same-origin pages for named form fields and, with --test, feeds each one
// into the orchestrator exactly as a hand-written detect job would.
var crawlCmd = &cobra.Command{
	Use:   "crawl URL",
	Short: "Discover candidate inputs by walking same-origin links",
	Args:  cobra.ExactArgs(1),
	RunE:  runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().IntVar(&crawlDepth, "depth", 2, "max link-following depth")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 25, "max pages visited")
	crawlCmd.Flags().BoolVar(&crawlTest, "test", false, "run the orchestrator against every discovered input")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	startURL := args[0]
	dir := stateDir()
	sessions := browser.NewManager(dir + "/sessions")

	found, err := crawl.Crawl(sessions, startURL, crawl.Options{MaxDepth: crawlDepth, MaxPages: crawlMaxPages})
	if err != nil {
		return fmt.Errorf("crawl %s: %w", startURL, err)
	}
	log.Info().Int("discovered", len(found)).Str("url", startURL).Msg("crawl complete")

	if !crawlTest {
		for _, d := range found {
			fmt.Printf("%s\t%s\t%s\n", d.URL, d.Selector, d.SubmitSelector)
		}
		return nil
	}

	cacheStore, err := cache.New(dir + "/cache")
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	effStore, err := effectiveness.Open(dir + "/effectiveness.json")
	if err != nil {
		return fmt.Errorf("open effectiveness store: %w", err)
	}
	engine := orchestrator.NewEngine(sessions, orchestrator.Stores{Cache: cacheStore, Effectiveness: effStore})

	baseOpts := xssconfig.OptionsFromViper()
	for _, d := range found {
		opts := baseOpts
		opts.SubmitSelector = d.SubmitSelector
		results, err := engine.DetectXSS(d.URL, d.Selector, nil, opts)
		if err != nil {
			log.Warn().Err(err).Str("url", d.URL).Str("selector", d.Selector).Msg("orchestrator run failed for discovered input")
			continue
		}
		for i, r := range results {
			results[i] = reducer.Score(r)
			if results[i].Reflected || results[i].Executed {
				fmt.Printf("VULNERABLE %s %s payload=%q severity=%s\n", d.URL, d.Selector, results[i].Payload, results[i].Severity)
			}
		}
	}
	return nil
}
