package cmd

import (
	"encoding/json"
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	xssconfig "github.com/ravensec/xssentinel/pkg/config"
)

var (
	configShow   bool
	configReset  bool
	configPath   bool
	configUpdate string
)

// configCmd manages the persisted defaults, grounded on the teacher's
// dumpconfig command but extended to the read/reset/update shape named
// in §6.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted defaults",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configShow, "show", false, "print the effective configuration")
	configCmd.Flags().BoolVar(&configReset, "reset", false, "write the default configuration, overwriting any existing file")
	configCmd.Flags().BoolVar(&configPath, "path", false, "print the resolved config file path")
	configCmd.Flags().StringVar(&configUpdate, "update", "", "merge FILE into the persisted configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	home, err := homedir.Dir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	configFile := home + "/.xssentinel.yaml"

	switch {
	case configPath:
		fmt.Println(configFile)
		return nil
	case configReset:
		viper.SetConfigFile(configFile)
		xssconfig.SetDefaultConfig()
		if err := viper.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		log.Info().Str("path", configFile).Msg("wrote default configuration")
		return nil
	case configUpdate != "":
		viper.SetConfigFile(configUpdate)
		if err := viper.MergeInConfig(); err != nil {
			return fmt.Errorf("merge %s: %w", configUpdate, err)
		}
		viper.SetConfigFile(configFile)
		if err := viper.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("persist merged config: %w", err)
		}
		log.Info().Str("path", configFile).Str("merged", configUpdate).Msg("updated configuration")
		return nil
	default:
		configShow = true
	}

	if configShow {
		settings := viper.AllSettings()
		if format == "json" {
			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		out, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}
