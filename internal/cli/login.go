package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the bot API",
		Long:  "Exchange an operator email and password for a bot API token and save it to ~/.botadmin/credentials.json.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.secret("Password: ")
			if err != nil {
				return err
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			token, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			return storeSession(cmd, email, token)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Operator email (prompted if omitted)")
	return cmd
}

func newSignupCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register an operator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if name == "" {
				if name, err = p.line("Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = p.line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.secret("Password: ")
			if err != nil {
				return err
			}
			if name == "" || email == "" || password == "" {
				return errors.New("name, email and password are required")
			}

			token, err := client.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return fmt.Errorf("signup: %w", err)
			}
			return storeSession(cmd, email, token)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Operator name (prompted if omitted)")
	cmd.Flags().StringVar(&email, "email", "", "Operator email (prompted if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved bot API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeCredentials(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func storeSession(cmd *cobra.Command, email, token string) error {
	p, err := saveCredentials(credentials{Email: email, Token: token})
	if err != nil {
		return err
	}
	logger.Info("session saved", "email", email)
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Credentials saved to %s\n", email, p)
	return nil
}
