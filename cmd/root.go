// Package cmd implements the command surface named in §6: detect, config,
// payloads and crawl, wired through a cobra root command in the same shape
// as the teacher's cmd/root.go.
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ravensec/xssentinel/lib"
	xssconfig "github.com/ravensec/xssentinel/pkg/config"
)

var cfgFile string
var debugLogging bool
var prettyLogs bool

// format is the shared output-format flag used by every read-style
// subcommand (detect, config --show).
var format string

var rootCmd = &cobra.Command{
	Use:   "xssentinel",
	Short: "Browser-driven XSS detection engine",
	Long: `xssentinel drives a real browser engine against a target input,
injecting a context-aware payload corpus and watching the page for evidence
of reflection and execution: dialogs, DOM mutations, sink writes, suspicious
console use, network egress and CSP violations.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main(), once.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xssentinel.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "use debug level logging")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", true, "use pretty console logging instead of JSON")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "pretty", "output format: pretty|text|json|yaml|table")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if prettyLogs {
			viper.Set("logging.console.format", "pretty")
		} else {
			viper.Set("logging.console.format", "json")
		}
		lib.ZeroConsoleAndFileLog()
		if debugLogging {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		return nil
	}
}

// initConfig reads the persisted config file, if any, and merges it over
// the defaults that config.LoadConfig already registered.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigName(".xssentinel")
	}

	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stateDir resolves the on-disk state directory under the user's home,
// creating it if missing.
func stateDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	dir := xssconfig.StateDir(home)
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
