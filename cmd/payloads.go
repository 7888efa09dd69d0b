package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/payloads"
	"github.com/ravensec/xssentinel/pkg/store/effectiveness"
)

var (
	payloadsGenerate string
	payloadsContext  string
	payloadsAttr     string
	payloadsEffective int
	payloadsBrowser  string
)

var payloadsCmd = &cobra.Command{
	Use:   "payloads",
	Short: "Generate, inspect or rank the payload corpus",
	RunE:  runPayloads,
}

func init() {
	rootCmd.AddCommand(payloadsCmd)

	payloadsCmd.Flags().StringVar(&payloadsGenerate, "generate", "", "write the categorized payload corpus to FILE as JSON")
	payloadsCmd.Flags().StringVar(&payloadsContext, "context", "", "print deterministic payloads for a context: HTML|ATTRIBUTE|JS|URL|CSS")
	payloadsCmd.Flags().StringVar(&payloadsAttr, "attribute", "", "attribute-kind when --context=ATTRIBUTE: unquoted|single-quoted|double-quoted|event-handler")
	payloadsCmd.Flags().IntVar(&payloadsEffective, "effective", 0, "print the top N payloads by historical effectiveness")
	payloadsCmd.Flags().StringVar(&payloadsBrowser, "browser", "", "scope --effective to one browser engine")
}

func runPayloads(cmd *cobra.Command, args []string) error {
	switch {
	case payloadsGenerate != "":
		categories := payloads.CategorizedFile()
		out, err := json.MarshalIndent(categories, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal categorized corpus: %w", err)
		}
		if err := os.WriteFile(payloadsGenerate, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", payloadsGenerate, err)
		}
		log.Info().Str("file", payloadsGenerate).Int("categories", len(categories)).Msg("wrote categorized payload corpus")
		return nil

	case payloadsContext != "":
		opts := payloads.GenerateOptions{AttributeKind: model.AttributeKind(payloadsAttr)}
		generated := payloads.GenerateForContext(model.Context(payloadsContext), opts)
		for _, p := range generated {
			fmt.Println(p)
		}
		return nil

	case payloadsEffective > 0:
		dir := stateDir()
		store, err := effectiveness.Open(dir + "/effectiveness.json")
		if err != nil {
			return fmt.Errorf("open effectiveness store: %w", err)
		}
		top := store.TopK(payloadsEffective, model.Browser(payloadsBrowser))
		for _, entry := range top {
			fmt.Printf("%-60s reflect=%.2f execute=%.2f tests=%d\n", entry.Payload, entry.ReflectionScore, entry.ExecutionScore, entry.TotalTests)
		}
		return nil

	default:
		return cmd.Help()
	}
}
