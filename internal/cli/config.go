package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"mimaas/internal/platform/config"
	perr "mimaas/internal/platform/errors"

	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
	}
	cmd.AddCommand(a.configShowCmd(), a.configSetCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings and where each one came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			s := c.Settings()
			view := map[string]any{
				"api_url":       s.APIURL,
				"authenticated": s.APIToken != "",
				"token_file":    s.TokenFile,
				"config_file":   s.ConfigFile,
				"timeout":       s.Timeout.String(),
				"verify_ssl":    s.VerifySSL,
				"sources":       s.Sources,
			}
			return a.emit(view, func(w io.Writer) {
				keys := make([]string, 0, len(view))
				for k := range view {
					if k != "sources" {
						keys = append(keys, k)
					}
				}
				sort.Strings(keys)
				for _, k := range keys {
					if from := s.Sources[k]; from != "" {
						fmt.Fprintf(w, "%s: %v (%s)\n", k, view[k], from)
						continue
					}
					fmt.Fprintf(w, "%s: %v\n", k, view[k])
				}
			})
		},
	}
}

func (a *app) configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting in the config file (api_url, timeout, verify_ssl)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			val, err := configValue(args[0], args[1])
			if err != nil {
				return err
			}
			s, err := config.Resolve(config.Explicit{ConfigFile: a.opts.ConfigFile}, nil)
			if err != nil {
				return err
			}
			if err := config.SaveFile(s.ConfigFile, map[string]any{args[0]: val}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s to %s\n", args[0], s.ConfigFile)
			return nil
		},
	}
}

// configValue converts a command line value to the type the config file stores
func configValue(key, raw string) (any, error) {
	switch key {
	case "api_url":
		return raw, nil
	case "timeout":
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, perr.WithField(perr.Validationf("timeout must be a positive number of seconds"), key)
		}
		return n, nil
	case "verify_ssl":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, perr.WithField(perr.Validationf("verify_ssl must be true or false"), key)
		}
		return b, nil
	}
	return nil, perr.WithField(perr.Validationf("unknown setting %q (want api_url, timeout or verify_ssl)", key), "key")
}
