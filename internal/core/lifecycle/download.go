package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mimaas/internal/core/domain"
	"mimaas/internal/core/exchange"
	perr "mimaas/internal/platform/errors"
)

// chunkSize is the streaming copy unit for artifact bodies
const chunkSize = 8 << 10

// DownloadOptions tunes DownloadArtifact
type DownloadOptions struct {
	// UseServerFolder inserts the request's server folder name between the
	// destination directory and the file name (costs one extra fetch)
	UseServerFolder bool
}

// DownloadArtifact streams artifact kind of request id to dest and returns the
// number of bytes written
//
// dest names the output file; when it is an existing directory or ends in a
// path separator the kind's conventional file name is used inside it. Missing
// parent directories are created. The body goes to a temporary file next to
// the destination and is renamed into place only once fully written
func (l *Lifecycle) DownloadArtifact(ctx context.Context, id int64, kind domain.ArtifactKind, dest string, o DownloadOptions) (int64, error) {
	if !kind.Valid() {
		return 0, perr.WithOp(perr.WithField(perr.Validationf("unknown artifact kind %q", kind), "kind"), "download")
	}
	if strings.TrimSpace(dest) == "" {
		return 0, perr.WithOp(perr.WithField(perr.Validationf("destination is required"), "dest"), "download")
	}
	dest = destFile(dest, kind)

	if o.UseServerFolder {
		req, err := l.Fetch(ctx, id)
		if err != nil {
			return 0, err
		}
		if req.FolderName != "" {
			if !filepath.IsLocal(req.FolderName) {
				return 0, perr.WithOp(perr.Validationf("server folder name %q is not a local path", req.FolderName), "download")
			}
			dest = filepath.Join(filepath.Dir(dest), req.FolderName, filepath.Base(dest))
		}
	}

	resp, err := exchange.Open(ctx, l.t, domain.Call{
		Op:     "download",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("%s%d/artifacts/%s", pathRequests, id, kind),
		Auth:   true,
	})
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			l.log.Debug().Err(cerr).Int64("request_id", id).Msg("close artifact body failed")
		}
	}()

	n, err := writeAtomic(dest, resp.Body)
	if err != nil {
		return n, perr.WithOp(err, "download")
	}
	l.log.Info().Int64("request_id", id).Str("kind", string(kind)).Str("path", dest).Int64("bytes", n).Msg("artifact downloaded")
	return n, nil
}

// destFile resolves a directory destination to a file inside it
func destFile(dest string, kind domain.ArtifactKind) string {
	if strings.HasSuffix(dest, string(os.PathSeparator)) || strings.HasSuffix(dest, "/") {
		return filepath.Join(dest, kind.FileName())
	}
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		return filepath.Join(dest, kind.FileName())
	}
	return dest
}

// writeAtomic streams src into dest in fixed-size chunks via a sibling temp file
func writeAtomic(dest string, src io.Reader) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeConfig, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeConfig, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	n, err := copyChunks(tmp, src)
	if err != nil {
		return n, fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return n, fail(perr.Wrapf(err, perr.ErrorCodeConfig, "chmod %s", tmpName))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return n, perr.Wrapf(err, perr.ErrorCodeConfig, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return n, perr.Wrapf(err, perr.ErrorCodeConfig, "move download into %s", dest)
	}
	return n, nil
}

// copyChunks separates read failures (network) from write failures (local disk)
func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			total += int64(nw)
			if werr != nil {
				return total, perr.Wrap(werr, perr.ErrorCodeConfig, "write artifact")
			}
			if nw != nr {
				return total, perr.Wrap(io.ErrShortWrite, perr.ErrorCodeConfig, "write artifact")
			}
		}
		if errors.Is(rerr, io.EOF) {
			return total, nil
		}
		if rerr != nil {
			return total, perr.Wrap(rerr, perr.ErrorCodeNetwork, "read artifact stream")
		}
	}
}
