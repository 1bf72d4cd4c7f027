package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	perr "mimaas/internal/platform/errors"
	"mimaas/pkg/mimaas"

	"github.com/spf13/cobra"
)

// readSecret takes the value of a flag or, when empty, one line of stdin
func (a *app) readSecret(flagVal, prompt string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	fmt.Fprint(a.errOut, prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", perr.Wrap(err, perr.ErrorCodeValidation, "read password")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	var noSave bool
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and store the API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(password, "Password: ")
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			if _, err := c.Login(cmd.Context(), args[0], pw, !noSave); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", args[0])
			if !noSave {
				fmt.Fprintf(a.out, "Token saved to %s\n", c.TokenFile())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the token")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var r mimaas.Registration
	var noSave bool
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and store its API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Username = args[0]
			pw, err := a.readSecret(r.Password, "Password: ")
			if err != nil {
				return err
			}
			r.Password = pw
			c, err := a.api()
			if err != nil {
				return err
			}
			if _, err := c.Register(cmd.Context(), r, !noSave); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s\n", r.Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&r.Email, "email", "", "email address")
	f.StringVar(&r.FirstName, "first-name", "", "first name")
	f.StringVar(&r.Surname, "surname", "", "surname")
	f.StringVar(&r.Plan, "plan", "free", "subscription plan")
	f.StringVarP(&r.Password, "password", "p", "", "password (read from stdin when omitted)")
	f.BoolVar(&noSave, "no-save", false, "do not persist the token")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			if c.Logout() {
				fmt.Fprintln(a.out, "Logged out")
			} else {
				fmt.Fprintln(a.out, "No saved token")
			}
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			u, err := c.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(u, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s %s) <%s>\n", u.Username, u.FirstName, u.Surname, u.Email)
				fmt.Fprintf(w, "Plan: %s, available runs: %d\n", u.Plan, u.AvailableRuns)
			})
		},
	}
}
