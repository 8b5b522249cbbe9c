package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SUSINDRAREDDY/Job-Agent/internal/browser"
	"github.com/SUSINDRAREDDY/Job-Agent/internal/observability"
)

// newTabsCmd creates the `tabs` command. It is most useful with
// browser.remote_url set, to see what a running Chrome has open before
// attaching with `run --tab`.
func newTabsCmd() *cobra.Command {
	var closeIndex int

	tabsCmd := &cobra.Command{
		Use:   "tabs",
		Short: "Lists the open browser tabs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			manager := browser.NewManager(appCfg.Browser, logger)
			defer func() {
				if err := manager.Shutdown(ctx); err != nil {
					logger.Warn("Browser shutdown reported errors", zap.Error(err))
				}
			}()

			if closeIndex >= 0 {
				if err := manager.CloseTab(ctx, closeIndex); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "closed tab %d\n", closeIndex)
			}

			tabs, err := manager.Tabs(ctx)
			if err != nil {
				return err
			}
			if len(tabs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no open tabs")
				return nil
			}
			for _, tab := range tabs {
				title := tab.Title
				if title == "" {
					title = "(untitled)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-40.40s  %s\n", tab.Index, title, tab.URL)
			}
			return nil
		},
	}

	tabsCmd.Flags().IntVar(&closeIndex, "close", -1, "close the tab at this index before listing")
	return tabsCmd
}
