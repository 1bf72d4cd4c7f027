package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"mimaas/pkg/mimaas"

	"github.com/spf13/cobra"
)

func (a *app) submitCmd() *cobra.Command {
	var (
		board    string
		quantize bool
		wait     bool
		wo       mimaas.WaitOptions
	)
	cmd := &cobra.Command{
		Use:   "submit <model.tflite>",
		Short: "Submit a model for evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			req, err := c.SubmitFile(cmd.Context(), args[0], board, quantize)
			if err != nil {
				return err
			}
			if !wait {
				return a.emit(req, func(w io.Writer) {
					fmt.Fprintf(w, "Submitted request #%d (%s) on %s\n", req.ID, req.Status, req.Board)
				})
			}
			fmt.Fprintf(a.errOut, "Submitted request #%d, waiting for results\n", req.ID)
			return a.waitAndPrint(cmd.Context(), c, req.ID, wo)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&board, "board", "b", "", "target board type")
	f.BoolVarP(&quantize, "quantize", "q", false, "quantize the model before deployment")
	f.BoolVarP(&wait, "wait", "w", false, "wait for the results")
	waitFlags(cmd, &wo)
	_ = cmd.MarkFlagRequired("board")
	return cmd
}

func waitFlags(cmd *cobra.Command, wo *mimaas.WaitOptions) {
	cmd.Flags().DurationVar(&wo.Timeout, "wait-timeout", mimaas.DefaultWaitTimeout, "how long to wait for completion")
	cmd.Flags().DurationVar(&wo.PollInterval, "poll-interval", mimaas.DefaultPollInterval, "time between status checks")
}

// waitAndPrint waits for id, reporting each status change on stderr
func (a *app) waitAndPrint(ctx context.Context, c *mimaas.Client, id int64, wo mimaas.WaitOptions) error {
	var last mimaas.Status
	start := time.Now()
	wo.OnPoll = func(r mimaas.Request) {
		if r.Status != last {
			fmt.Fprintf(a.errOut, "[%s] request #%d: %s\n", time.Since(start).Round(time.Second), id, r.Status)
			last = r.Status
		}
	}
	res, err := c.WaitForCompletion(ctx, id, wo)
	if err != nil {
		return err
	}
	return a.emit(res, func(w io.Writer) { fmt.Fprintln(w, res) })
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			req, err := c.Request(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.emit(req, func(w io.Writer) { fmt.Fprintln(w, req) })
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var f mimaas.ListFilter
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = mimaas.Status(status)
			c, err := a.api()
			if err != nil {
				return err
			}
			reqs, err := c.ListRequests(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.emit(reqs, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tBOARD\tQUANTIZE\tFOLDER")
				for _, r := range reqs {
					_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", r.ID, r.Status, r.Board, r.Quantize, r.FolderName)
				}
				_ = tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only requests in this status (pending, processing, done, error)")
	cmd.Flags().StringVar(&f.Board, "board", "", "only requests for this board")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			if err := c.DeleteRequest(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted request #%d\n", id)
			return nil
		},
	}
}

func (a *app) waitCmd() *cobra.Command {
	var wo mimaas.WaitOptions
	cmd := &cobra.Command{
		Use:   "wait <id>",
		Short: "Wait for a request to finish and print its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.api()
			if err != nil {
				return err
			}
			return a.waitAndPrint(cmd.Context(), c, id, wo)
		},
	}
	waitFlags(cmd, &wo)
	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	var board string
	cmd := &cobra.Command{
		Use:   "validate <model.tflite>",
		Short: "Check a model against a board without creating a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			rep, err := c.ValidateFile(cmd.Context(), args[0], board)
			if err != nil {
				return err
			}
			return a.emit(rep, func(w io.Writer) {
				if rep.Valid {
					fmt.Fprintln(w, "Model is valid")
				} else {
					fmt.Fprintln(w, "Model is NOT valid")
				}
				for _, e := range rep.Errors {
					fmt.Fprintln(w, "  error:", e)
				}
				for _, warn := range rep.Warnings {
					fmt.Fprintln(w, "  warning:", warn)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&board, "board", "b", "", "target board type")
	_ = cmd.MarkFlagRequired("board")
	return cmd
}
