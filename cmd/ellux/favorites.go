package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/favorites"
	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/validation"
)

func (c *cli) favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage your saved articles",
	}
	cmd.AddCommand(
		c.favoritesListCmd(),
		c.favoritesToggleCmd(),
		c.favoritesRemoveCmd(),
		c.favoritesSearchCmd(),
		c.favoritesExportCmd(),
	)
	return cmd
}

// openFavorites opens the favorites page for the signed-in user.
func (c *cli) openFavorites() (*pages.Favorites, error) {
	svc, err := c.services()
	if err != nil {
		return nil, err
	}
	page := pages.NewFavorites(svc)
	if err := page.Open(); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *cli) favoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your favorites",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			page, err := c.openFavorites()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			list := page.List()
			if len(list) == 0 {
				fmt.Fprintln(out, "No favorites yet.")
				return nil
			}
			for i, f := range list {
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, f.Title, f.URL)
			}
			return nil
		}),
	}
}

func (c *cli) favoritesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <url>",
		Short: "Save or unsave a current top story",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			home := pages.NewHome(svc)
			if err := home.Load(contextFor(cmd)); err != nil {
				return err
			}
			article, ok := home.Find(args[0])
			if !ok {
				return fmt.Errorf("no current story with url %s", args[0])
			}
			saved, err := home.ToggleFavorite(article)
			if err != nil {
				return err
			}
			if saved {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", article.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", article.Title)
			}
			return nil
		}),
	}
}

func (c *cli) favoritesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a favorite by its number in 'favorites list'",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid favorite number %q", args[0])
			}
			page, err := c.openFavorites()
			if err != nil {
				return err
			}
			list := page.List()
			if n > len(list) {
				return fmt.Errorf("no favorite number %d (have %d)", n, len(list))
			}
			page.Remove(n - 1)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", list[n-1].Title)
			return nil
		}),
	}
}

func (c *cli) favoritesSearchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			page, err := c.openFavorites()
			if err != nil {
				return err
			}
			results, err := page.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%d. %s\n   %s\n", r.Index+1, r.Favorite.Title, r.Favorite.URL)
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of results")
	return cmd
}

func (c *cli) favoritesExportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export your favorites as json, yaml or toml",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			f, err := favorites.ParseFormat(format)
			if err != nil {
				return err
			}
			page, err := c.openFavorites()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				path, err := validation.NewPermissivePathHandler().ValidateFile(output)
				if err != nil {
					return err
				}
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}
			return favorites.Export(w, f, page.UserID(), page.List())
		}),
	}
	cmd.Flags().StringVar(&format, "format", "json", "json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
