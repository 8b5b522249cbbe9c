package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/agent"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/config"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/llm"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/observability"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/profile"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var (
		query    string
		boardURL string
		apply    bool
		tabSpec  string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs a job-search session against a board",
		Long: `Run opens the job board, hands control to the model, and reports what it
found. With --apply the agent also opens a matching job's application form
and fills it from the applicant profile; it stops before the final submit
unless --apply-confirm is set.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind overrides so flags win over the config file and env.
			if err := viper.BindPFlag("agent.confirm_submit", cmd.Flags().Lookup("apply-confirm")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-resolve the config now that the run flags are bound.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			var prof profile.Profile
			if apply {
				prof, err = profile.Load(cfg.Profile.Path)
				if err != nil {
					return fmt.Errorf("--apply needs an applicant profile: %w", err)
				}
			}

			router, err := llm.NewClient(ctx, cfg.Agent, logger)
			if err != nil {
				return err
			}

			manager := browser.NewManager(cfg.Browser, logger)
			defer func() {
				if err := manager.Shutdown(ctx); err != nil {
					logger.Warn("Browser shutdown reported errors", zap.Error(err))
				}
			}()

			session, err := openSession(cmd, manager, tabSpec)
			if err != nil {
				return err
			}

			controller := agent.NewController(router, session, prof, cfg.Agent, cfg.Extract.Dir, logger)
			summary, err := controller.Run(ctx, query, boardURL, apply)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	runCmd.Flags().StringVarP(&query, "query", "q", "", "natural-language job search query")
	runCmd.Flags().StringVar(&boardURL, "board-url", "", "job board URL to open")
	runCmd.Flags().BoolVar(&apply, "apply", false, "also fill the application form from the profile")
	runCmd.Flags().Bool("apply-confirm", false, "allow the agent to click the final submit")
	runCmd.Flags().Bool("headless", false, "run the launched browser headless")
	runCmd.Flags().StringVar(&tabSpec, "tab", "", "attach to an existing tab by index, or \"last\" (default: open a new tab)")
	runCmd.MarkFlagRequired("query")
	runCmd.MarkFlagRequired("board-url")

	return runCmd
}

// openSession opens a fresh tab, or attaches to an existing one when --tab
// was given.
func openSession(cmd *cobra.Command, manager *browser.Manager, tabSpec string) (*browser.Session, error) {
	ctx := cmd.Context()
	if tabSpec == "" {
		return manager.NewSession(ctx)
	}
	if strings.EqualFold(tabSpec, "last") {
		return manager.AttachTab(ctx, -1)
	}
	index, err := strconv.Atoi(tabSpec)
	if err != nil {
		return nil, fmt.Errorf("invalid --tab value %q: expected an index or \"last\"", tabSpec)
	}
	return manager.AttachTab(ctx, index)
}
