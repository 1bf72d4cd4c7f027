package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) boardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List available board types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			boards, err := c.ListBoards(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(boards, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
				_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tFLASH KB\tRAM KB\tARENA KB\tAVAILABLE")
				for _, b := range boards {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", b.Name, b.BoardType, b.FlashSizeKB, b.RAMSizeKB, b.MaxTensorArenaKB, b.AvailableCount)
				}
				_ = tw.Flush()
			})
		},
	}
}

func (a *app) boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <name>",
		Short: "Show one board type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			b, err := c.Board(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(b, func(w io.Writer) { fmt.Fprintln(w, b) })
		},
	}
}

func (a *app) boardStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board-status <name>",
		Short: "Show live availability of a board type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			st, err := c.BoardStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.emit(st, func(w io.Writer) {
				keys := make([]string, 0, len(st))
				for k := range st {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "%s: %v\n", k, st[k])
				}
			})
		},
	}
}

func (a *app) plansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.api()
			if err != nil {
				return err
			}
			plans, err := c.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(plans, func(w io.Writer) {
				for _, p := range plans {
					fmt.Fprintln(w, p)
				}
			})
		},
	}
}
