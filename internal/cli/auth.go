package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"cocreate/pkg/client"
	"cocreate/pkg/frontend"
	"cocreate/pkg/models"
	"cocreate/pkg/session"
)

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			_, err = frontend.NewAuth(c.deps).Login(cmd.Context(), args[0], pw)
			return err
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var categories []string
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := c.readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := c.readPassword(cmd, "Confirm password: ")
			if err != nil {
				return err
			}
			_, err = frontend.NewAuth(c.deps).Register(cmd.Context(), models.RegisterRequest{
				Name:            args[0],
				Password:        pw,
				ConfirmPassword: confirm,
				Categories:      categories,
			})
			return err
		},
	}
	cmd.Flags().StringSliceVar(&categories, "category", nil, "interest categories (repeatable)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return frontend.NewAuth(c.deps).Logout(cmd.Context())
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and current selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := frontend.NewAuth(c.deps).CurrentUser()
			if u == nil {
				return client.ErrUnauthenticated
			}
			c.printf("%s (#%d)\n", u.Name, u.ID)
			s, err := c.deps.Store.Load()
			if err != nil {
				return err
			}
			printSelection(c, s)
			return nil
		},
	}
}

func printSelection(c *cli, s session.State) {
	if s.Project != nil {
		c.printf("Project: #%d %s\n", s.Project.ID, s.Project.Title)
	}
	if s.Trouble != nil {
		c.printf("Trouble: #%d %s\n", s.Trouble.ID, s.Trouble.Category)
	}
}

func (c *cli) accountCmd() *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}
	var (
		name       string
		changePass bool
	)
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := models.UserUpdate{Name: name}
			if changePass {
				pw, err := c.readPassword(cmd, "New password: ")
				if err != nil {
					return err
				}
				confirm, err := c.readPassword(cmd, "Confirm password: ")
				if err != nil {
					return err
				}
				req.Password, req.ConfirmPassword = pw, confirm
			}
			if req.Name == "" && req.Password == "" {
				return errors.New("nothing to update: pass --name and/or --password")
			}
			u, err := frontend.NewAuth(c.deps).UpdateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			c.printf("%s (#%d)\n", u.Name, u.ID)
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "new display name")
	update.Flags().BoolVar(&changePass, "password", false, "prompt for a new password")
	account.AddCommand(update)
	return account
}
