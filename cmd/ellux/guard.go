package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/session"
)

func (c *cli) guardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guard <path>",
		Short: "Show what the session gate does for a page",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			action := svc.Gate.GuardRoute(args[0])
			if action == session.Allow {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: allow\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", args[0], action, svc.Gate.Target(action))
			return nil
		}),
	}
}
