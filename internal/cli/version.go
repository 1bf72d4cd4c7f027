package cli

import (
	"fmt"
	"io"

	"mimaas/internal/core/version"

	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Info()
			return a.emit(info, func(w io.Writer) { fmt.Fprintln(w, info) })
		},
	}
}
