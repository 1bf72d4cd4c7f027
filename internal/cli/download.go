package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	perr "mimaas/internal/platform/errors"
	"mimaas/pkg/mimaas"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (a *app) downloadCmd() *cobra.Command {
	var (
		kinds        []string
		dest         string
		serverFolder bool
	)
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download artifacts of a finished request",
		Long: "Download artifacts of a finished request.\n\nKinds: " + kindNames() +
			"\nSeveral --kind flags fetch the artifacts concurrently into the output directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			parsed := make([]mimaas.ArtifactKind, 0, len(kinds))
			for _, k := range kinds {
				kind, ok := mimaas.ParseArtifactKind(k)
				if !ok {
					return perr.WithField(perr.Validationf("unknown artifact kind %q (want one of %s)", k, kindNames()), "kind")
				}
				parsed = append(parsed, kind)
			}
			// several artifacts always land in a directory
			if len(parsed) > 1 && !strings.HasSuffix(dest, string(filepath.Separator)) {
				dest += string(filepath.Separator)
			}

			c, err := a.api()
			if err != nil {
				return err
			}
			opts := mimaas.DownloadOptions{UseServerFolder: serverFolder}

			var mu sync.Mutex
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, kind := range parsed {
				g.Go(func() error {
					n, err := c.DownloadArtifact(ctx, id, kind, dest, opts)
					if err != nil {
						return err
					}
					mu.Lock()
					fmt.Fprintf(a.out, "Downloaded %s (%d bytes)\n", kind, n)
					mu.Unlock()
					return nil
				})
			}
			return g.Wait()
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&kinds, "kind", "k", []string{string(mimaas.ArtifactAll)}, "artifact kind, repeatable")
	f.StringVarP(&dest, "output", "o", "."+string(filepath.Separator), "output file or directory")
	f.BoolVar(&serverFolder, "server-folder", false, "place files under the request's server-side folder name")
	return cmd
}

func kindNames() string {
	names := []string{
		string(mimaas.ArtifactRAMReport), string(mimaas.ArtifactROMReport),
		string(mimaas.ArtifactPowerSummary), string(mimaas.ArtifactPowerSamples),
		string(mimaas.ArtifactModel), string(mimaas.ArtifactAll),
	}
	return strings.Join(names, ", ")
}
