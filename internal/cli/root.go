// Package cli implements the mimaas command line tool on top of pkg/mimaas
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/pkg/mimaas"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the global flags and the lazily built client
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	opts     mimaas.Options
	insecure bool
	asJSON   bool
	debug    bool

	client *mimaas.Client
	// newClient is swapped in tests
	newClient func(mimaas.Options) (*mimaas.Client, error)
}

// Execute runs the CLI with args and returns the process exit code
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRoot(&app{in: in, out: out, errOut: errOut, newClient: mimaas.New})
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return perr.ExitCode(perr.CodeOf(err))
	}
	return 0
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "mimaas",
		Short:         "Evaluate TFLite models on remote microcontroller boards",
		Long:          `mimaas submits models to the MIMaaS service, waits for the evaluation and downloads the measured artifacts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			opt := logger.FromEnv()
			if a.debug {
				opt.Level = "debug"
			}
			opt.Component = "cli"
			logger.Init(opt)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.APIURL, "api-url", "", "API base URL (env MIMAAS_API_URL)")
	f.StringVar(&a.opts.APIToken, "token", "", "API token (env MIMAAS_API_TOKEN)")
	f.StringVar(&a.opts.TokenFile, "token-file", "", "token file (default ~/.mimaas/token)")
	f.StringVar(&a.opts.ConfigFile, "config", "", "config file (default ~/.mimaas/config.yaml)")
	f.DurationVar(&a.opts.Timeout, "timeout", 0, "per call timeout (default 120s)")
	f.BoolVar(&a.insecure, "insecure", false, "skip TLS certificate verification")
	f.BoolVar(&a.asJSON, "json", false, "print JSON instead of text")
	f.BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.loginCmd(), a.registerCmd(), a.logoutCmd(), a.whoamiCmd(),
		a.boardsCmd(), a.boardCmd(), a.boardStatusCmd(), a.plansCmd(),
		a.submitCmd(), a.statusCmd(), a.listCmd(), a.deleteCmd(), a.waitCmd(),
		a.downloadCmd(), a.validateCmd(), a.configCmd(), a.versionCmd(),
	)
	return root
}

// api returns the client, building it on first use
func (a *app) api() (*mimaas.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	o := a.opts
	if a.insecure {
		verify := false
		o.VerifySSL = &verify
	}
	c, err := a.newClient(o)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// emit prints v as indented JSON when --json is set, otherwise text()
func (a *app) emit(v any, text func(w io.Writer)) error {
	if !a.asJSON {
		text(a.out)
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode output")
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, perr.WithField(perr.Validationf("invalid request id %q", s), "id")
	}
	return id, nil
}
