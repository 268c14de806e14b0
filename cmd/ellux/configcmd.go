package main

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/config"
	"github.com/pders01/ellux/internal/validation"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(generateConfigCmd(), c.configPathCmd())
	return cmd
}

func generateConfigCmd() *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			target, err := configPaths().ValidateFile(path)
			if err != nil {
				return err
			}
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", target)
			}
			if err := config.GenerateDefaultConfig(target); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "where to write (default: user config dir)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return standalone(cmd)
}

// configPaths keeps generated config files under the user's config or home
// directory (or the temp directory).
func configPaths() *validation.PathHandler {
	dirs := []string{xdg.ConfigHome}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	}
	return validation.NewSecurePathHandler(dirs...)
}

func (c *cli) configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective paths and endpoints",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database:     %s\n", c.cfg.Database.Path)
			fmt.Fprintf(out, "search index: %s\n", c.cfg.Database.SearchIndex)
			fmt.Fprintf(out, "api:          %s\n", c.cfg.API.BaseURL)
			fmt.Fprintf(out, "news source:  %s\n", c.cfg.News.Source)
			fmt.Fprintf(out, "session ttl:  %s\n", c.cfg.Session.TTL)
			return nil
		}),
	}
}
