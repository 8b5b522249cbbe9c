package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/observability"
)

var (
	cfgFile string
	appCfg  *config.Config
	osExit  = os.Exit
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobagent",
		Short: "Jobagent is an LLM-driven browser agent for job boards.",
		Long: `Jobagent drives a Chrome instance through the DevTools protocol and lets a
language model search job boards, extract listings, and fill application
forms from a local applicant profile.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(); err != nil {
				return err
			}

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				// A fallback logger so the failure itself gets reported.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "jobagent"})
				return fmt.Errorf("loading configuration: %w", err)
			}
			appCfg = cfg

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting jobagent", zap.String("version", Version))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.SetVersionTemplate(`jobagent version {{printf "%s" .Version}}
`)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newTabsCmd())
	return cmd
}

// Execute runs the root command with a signal-aware context so a Ctrl-C
// unwinds the browser cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	observability.Sync()
	if err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		osExit(1)
	}
}

// initializeConfig reads the config file and environment overrides into the
// global viper instance.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("JOBAGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults plus env carry the run.
	}
	return nil
}
