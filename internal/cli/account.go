package cli

import (
	"fmt"

	"carmarket/internal/auth"

	"github.com/spf13/cobra"
)

func newLoginCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in and remember the session on this device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := env.Session.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

func newRegisterCommand(env *Env) *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := env.Session.Register(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in.\n", user.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number shown on your listings")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short introduction")
	return cmd
}

func newLogoutCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, ok := env.Session.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.Name, user.Email, user.Phone)
			return nil
		},
	}
}

func newAskCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the buying consultant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), env.App.Assistant.Ask(cmd.Context(), joinArgs(args)))
			return nil
		},
	}
}
