package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/pages"
)

func (c *cli) signinCmd() *cobra.Command {
	var form pages.SignInForm
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to your account",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			page := pages.NewSignIn(svc)
			if err := page.Open(); err != nil {
				return err
			}

			p := newPrompter(cmd)
			if form.Email, err = p.line("Email", firstNonEmpty(form.Email, svc.RememberedEmail())); err != nil {
				return err
			}
			if form.Password, err = p.secret("Password", form.Password); err != nil {
				return err
			}

			next, err := page.Submit(contextFor(cmd), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", form.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Next: %s\n", next)
			return nil
		}),
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&form.Redirect, "redirect", "", "page to continue with after signing in")
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var form pages.SignUpForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			page := pages.NewSignUp(svc)
			if err := page.Open(); err != nil {
				return err
			}

			p := newPrompter(cmd)
			if form.Username, err = p.line("Username", form.Username); err != nil {
				return err
			}
			if form.Email, err = p.line("Email", form.Email); err != nil {
				return err
			}
			if form.Password, err = p.secret("Password", form.Password); err != nil {
				return err
			}
			if form.ConfirmPassword, err = p.secret("Confirm password", form.ConfirmPassword); err != nil {
				return err
			}

			if _, err := page.Submit(contextFor(cmd), form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Check %s for a verification link.\n", svc.RememberedEmail())
			return nil
		}),
	}
	cmd.Flags().StringVar(&form.Username, "username", "", "user name")
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			pages.NewLogout(svc).Run(contextFor(cmd))
			if all {
				if err := c.wipeLocal(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out and cleared local data.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "also delete favorites and cached data stored on this machine")
	return cmd
}

func (c *cli) passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Recover a forgotten password",
	}
	cmd.AddCommand(c.passwordForgotCmd(), c.passwordResetCmd())
	return cmd
}

func (c *cli) passwordForgotCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Mail a password reset link",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			if email, err = newPrompter(cmd).line("Email", email); err != nil {
				return err
			}
			if err := pages.NewPasswordReset(svc).Forgot(contextFor(cmd), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "If %s has an account, a reset link is on its way.\n", svc.RememberedEmail())
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (c *cli) passwordResetCmd() *cobra.Command {
	var form pages.ResetForm
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with the token from the reset link",
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			svc, err := c.services()
			if err != nil {
				return err
			}
			p := newPrompter(cmd)
			if form.Token, err = p.line("Token", form.Token); err != nil {
				return err
			}

			page := pages.NewPasswordReset(svc)
			ctx := contextFor(cmd)
			if err := page.Verify(ctx, form.Token); err != nil {
				return err
			}
			if form.NewPassword, err = p.secret("New password", form.NewPassword); err != nil {
				return err
			}
			if form.ConfirmNewPassword, err = p.secret("Confirm new password", form.ConfirmNewPassword); err != nil {
				return err
			}
			if _, err := page.Reset(ctx, form); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with 'ellux signin'.")
			return nil
		}),
	}
	cmd.Flags().StringVar(&form.Token, "token", "", "reset token")
	cmd.Flags().StringVar(&form.NewPassword, "password", "", "new password (prompted when omitted)")
	cmd.Flags().StringVar(&form.ConfirmNewPassword, "confirm", "", "new password again (prompted when omitted)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
