package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/storage"
	"github.com/pders01/ellux/internal/tui"
)

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.showProfile(cmd)
		}),
	}
	cmd.AddCommand(c.profileShowCmd(), c.profileUpdateCmd(), c.profileDeleteCmd())
	return cmd
}

func (c *cli) profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.showProfile(cmd)
		}),
	}
}

func (c *cli) showProfile(cmd *cobra.Command) error {
	svc, err := c.services()
	if err != nil {
		return err
	}
	profile, stale, err := pages.NewProfile(svc).Load(contextFor(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printProfile(out, profile)
	if stale {
		fmt.Fprintln(out, tui.StatusWarnStyle.Render("(offline: showing saved copy)"))
	}
	return nil
}

func printProfile(w io.Writer, p storage.Profile) {
	fmt.Fprintln(w, tui.HeaderStyle.Render(p.DisplayName()))
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-10s %s\n", label+":", value)
		}
	}
	row("Username", p.User.Username)
	row("Email", p.User.Email)
	row("Name", joinName(p.Profile.FirstName, p.Profile.LastName))
	row("Location", p.Profile.Location)
	row("Bio", p.Profile.Bio)
	row("Avatar", p.Profile.AvatarURL)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

func (c *cli) profileUpdateCmd() *cobra.Command {
	var fields storage.ProfileFields
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; omitted fields keep their value",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if fields == (storage.ProfileFields{}) {
				return errors.New("nothing to update; pass at least one field flag")
			}
			svc, err := c.services()
			if err != nil {
				return err
			}
			updated, err := pages.NewProfile(svc).Update(contextFor(cmd), fields)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			printProfile(cmd.OutOrStdout(), updated)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&fields.FirstName, "first-name", "", "first name")
	f.StringVar(&fields.LastName, "last-name", "", "last name")
	f.StringVar(&fields.Bio, "bio", "", "short bio")
	f.StringVar(&fields.Location, "location", "", "location")
	f.StringVar(&fields.AvatarURL, "avatar-url", "", "avatar image URL")
	return cmd
}

func (c *cli) profileDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and its favorites",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}
			svc, err := c.services()
			if err != nil {
				return err
			}
			if err := pages.NewProfile(svc).Delete(contextFor(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account deleted.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}
