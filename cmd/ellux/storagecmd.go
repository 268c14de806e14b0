package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/storage"
)

func (c *cli) storageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect or wipe the local database",
	}
	cmd.AddCommand(c.storageStatsCmd(), c.storageClearCmd())
	return cmd
}

// store opens the services and returns the key-value store behind them.
func (c *cli) store() (*storage.Store, error) {
	if _, err := c.services(); err != nil {
		return nil, err
	}
	return c.app.store, nil
}

func (c *cli) storageStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show what the local database holds",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			store, err := c.store()
			if err != nil {
				return err
			}
			all, err := store.Keys("")
			if err != nil {
				return err
			}
			sets, err := store.Keys(storage.FavoritesPrefix())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			size := "unknown size"
			if info, err := os.Stat(store.Path()); err == nil {
				size = fmt.Sprintf("%d bytes", info.Size())
			}
			fmt.Fprintf(out, "database: %s (%s)\n", store.Path(), size)
			fmt.Fprintf(out, "keys:     %d\n", len(all))
			if store.Has(storage.KeySession) {
				fmt.Fprintln(out, "session:  stored")
			} else {
				fmt.Fprintln(out, "session:  none")
			}

			var anon []storage.FavoriteArticle
			store.Get(storage.KeyAnonymousFavorites, &anon)
			fmt.Fprintf(out, "anonymous favorites: %d\n", len(anon))
			for _, key := range sets {
				uid, ok := storage.FavoritesOwner(key)
				if !ok {
					continue
				}
				var list []storage.FavoriteArticle
				store.Get(key, &list)
				fmt.Fprintf(out, "favorites of %s: %d\n", uid, len(list))
			}
			return nil
		}),
	}
}

func (c *cli) storageClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every locally stored value, session included",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear local data without --yes")
			}
			if err := c.wipeLocal(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local data cleared.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

// wipeLocal clears the database and drops the search documents of every
// user whose favorites it held.
func (c *cli) wipeLocal() error {
	store, err := c.store()
	if err != nil {
		return err
	}
	sets, err := store.Keys(storage.FavoritesPrefix())
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	if c.app.index == nil {
		return nil
	}
	for _, key := range sets {
		if uid, ok := storage.FavoritesOwner(key); ok {
			if err := c.app.index.Reindex(uid); err != nil {
				return err
			}
		}
	}
	return nil
}
