package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/tui"
)

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the news and your favorites",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd)
		}),
	}
}

func (c *cli) runBrowse(cmd *cobra.Command) error {
	svc, err := c.services()
	if err != nil {
		return err
	}

	app := tui.NewApp(contextFor(cmd), svc, c.app.launcher)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(contextFor(cmd)))
	if _, err := p.Run(); err != nil {
		return err
	}
	if target := app.Redirect(); target != "" {
		return explain(&pages.Redirect{To: target})
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.CompactLogo, "bye")
	return nil
}
