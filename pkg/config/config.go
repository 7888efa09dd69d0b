// Package config loads and supplies defaults for the option registry named
// in §6, the same viper-based pattern the teacher's pkg/config/config.go
// uses for its own, differently-shaped option tree.
package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ravensec/xssentinel/pkg/model"
)

// LoadConfig reads /etc/xssentinel/config.yaml or ./config.yaml, then layers
// SetDefaultConfig on top so every option named in §6 has a usable value
// even with no config file present.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/xssentinel/")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("no config file found, using defaults")
		} else {
			log.Warn().Err(err).Msg("error reading config file")
		}
	}
	SetDefaultConfig()
}

// SetDefaultConfig installs the persisted defaults for every option in the
// registry, so CLI flags and an optional config file only need to override
// what differs from the baseline.
func SetDefaultConfig() {
	viper.SetDefault("browser.default", "chromium")
	viper.SetDefault("browser.headless", true)
	viper.SetDefault("browser.no_sandbox", true)
	viper.SetDefault("browser.disable_gpu", true)

	viper.SetDefault("timeouts.navigation", 30000)
	viper.SetDefault("timeouts.action", 5000)
	viper.SetDefault("timeouts.waitFor", 1500)
	viper.SetDefault("timeouts.execution", 2000)
	viper.SetDefault("timeouts.global", 120000)

	viper.SetDefault("retry.enabled", true)
	viper.SetDefault("retry.maxAttempts", 2)
	viper.SetDefault("retry.delay", 500)
	viper.SetDefault("retry.exponentialBackoff", true)
	viper.SetDefault("retry.operations", []string{"navigation", "submission", "input"})

	viper.SetDefault("session.reuse", false)
	viper.SetDefault("session.save", false)
	viper.SetDefault("session.closeAfter", true)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.maxAge", 0)
	viper.SetDefault("cache.verbose", false)

	viper.SetDefault("effectiveness.track", true)
	viper.SetDefault("effectiveness.useEffectivePayloads", true)
	viper.SetDefault("effectiveness.limit", 50)

	viper.SetDefault("smartPayloadSelection.enabled", true)
	viper.SetDefault("smartPayloadSelection.limit", 20)

	viper.SetDefault("report.format", "json")
	viper.SetDefault("report.outputDir", ".")

	viper.SetDefault("logging.verbose", false)
	viper.SetDefault("logging.showProgress", true)
	viper.SetDefault("logging.progressUpdateInterval", 1000)
	viper.SetDefault("logging.console.format", "pretty")
	viper.SetDefault("logging.file.enabled", false)

	viper.SetDefault("scheduler.concurrency", 4)
	viper.SetDefault("scheduler.shareSession", false)
	viper.SetDefault("scheduler.stopOnFirstVulnerability", false)

	viper.SetDefault("api.rateLimit.perSecond", 5.0)
	viper.SetDefault("api.rateLimit.burst", 10.0)
	viper.SetDefault("api.cors.origins", []string{"*"})
	viper.SetDefault("api.docs.enabled", true)
	viper.SetDefault("api.docs.path", "/docs")
	viper.SetDefault("api.metrics.enabled", true)
	viper.SetDefault("api.listen.host", "0.0.0.0")
	viper.SetDefault("api.listen.port", 8034)
}

// StateDir returns the directory for on-disk state (cache, effectiveness
// document, sessions) under a user-home location — per §6's "Persisted
// config under a user-home location". It only builds the path; callers
// create the directory.
func StateDir(homeDir string) string {
	return homeDir + "/.xssentinel"
}

// OptionsFromViper builds the full §6 option registry from whatever is
// currently loaded into viper (persisted config merged with defaults). CLI
// flags are applied by the caller on top of the returned value, so
// persisted settings are always overridden by anything explicitly
// provided on the command line.
func OptionsFromViper() model.Options {
	retryOps := map[model.RetryOperation]bool{}
	for _, op := range viper.GetStringSlice("retry.operations") {
		retryOps[model.RetryOperation(op)] = true
	}

	opts := model.Options{
		Browser:         model.Browser(viper.GetString("browser.default")),
		VerifyExecution: true,
		Timeouts: model.Timeouts{
			Navigation: time.Duration(viper.GetInt("timeouts.navigation")) * time.Millisecond,
			Action:     time.Duration(viper.GetInt("timeouts.action")) * time.Millisecond,
			WaitFor:    time.Duration(viper.GetInt("timeouts.waitFor")) * time.Millisecond,
			Execution:  time.Duration(viper.GetInt("timeouts.execution")) * time.Millisecond,
			Global:     time.Duration(viper.GetInt("timeouts.global")) * time.Millisecond,
		},
		Retry: model.RetryPolicy{
			Enabled:            viper.GetBool("retry.enabled"),
			MaxAttempts:        viper.GetInt("retry.maxAttempts"),
			Delay:              time.Duration(viper.GetInt("retry.delay")) * time.Millisecond,
			ExponentialBackoff: viper.GetBool("retry.exponentialBackoff"),
			Operations:         retryOps,
		},
		Session: model.SessionOptions{
			Reuse:      viper.GetBool("session.reuse"),
			Save:       viper.GetBool("session.save"),
			CloseAfter: viper.GetBool("session.closeAfter"),
		},
		Cache: model.CacheOptions{
			Enabled: viper.GetBool("cache.enabled"),
			MaxAge:  time.Duration(viper.GetInt("cache.maxAge")) * time.Millisecond,
			Verbose: viper.GetBool("cache.verbose"),
		},
		Effectiveness: model.EffectivenessOptions{
			Track:                viper.GetBool("effectiveness.track"),
			UseEffectivePayloads: viper.GetBool("effectiveness.useEffectivePayloads"),
			Limit:                viper.GetInt("effectiveness.limit"),
		},
		SmartPayloadSelection: model.SmartSelectionOptions{
			Enabled: viper.GetBool("smartPayloadSelection.enabled"),
			Limit:   viper.GetInt("smartPayloadSelection.limit"),
		},
		Report: model.ReportOptions{
			Format:    viper.GetString("report.format"),
			OutputDir: viper.GetString("report.outputDir"),
		},
		Logging: model.LoggingOptions{
			Verbose:                viper.GetBool("logging.verbose"),
			ShowProgress:           viper.GetBool("logging.showProgress"),
			ProgressUpdateInterval: time.Duration(viper.GetInt("logging.progressUpdateInterval")) * time.Millisecond,
		},
	}

	if viper.IsSet("auth.url") {
		opts.Auth = &model.AuthRecipe{
			URL:              viper.GetString("auth.url"),
			UsernameSelector: viper.GetString("auth.usernameSelector"),
			PasswordSelector: viper.GetString("auth.passwordSelector"),
			SubmitSelector:   viper.GetString("auth.submitSelector"),
			Username:         viper.GetString("auth.username"),
			Password:         viper.GetString("auth.password"),
			IsLoggedInCheck:  viper.GetString("auth.isLoggedInCheck"),
		}
	}

	return opts
}
