package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ravensec/xssentinel/pkg/browser"
	"github.com/ravensec/xssentinel/pkg/httpapi"
)

// apiCmd starts the optional HTTP submission endpoint named in §6.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP submission endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := stateDir()
		sessions := browser.NewManager(dir + "/sessions")
		server := httpapi.New(sessions, log.Logger)
		log.Info().Msg("starting xssentinel API")
		return server.Listen()
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
}
