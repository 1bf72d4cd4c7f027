package transport

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"mimaas/internal/core/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody streams fields and files through a pipe so a large model is
// never held in memory; the writer goroutine ends when the body is consumed
// or the reader is closed by net/http
func multipartBody(fields map[string]string, files []domain.FilePart) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeParts(mw, fields, files)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, fields map[string]string, files []domain.FilePart) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return err
		}
	}

	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.FileName)))
		h.Set("Content-Type", ct)

		w, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		if f.Body == nil {
			continue
		}
		if _, err := io.Copy(w, f.Body); err != nil {
			return fmt.Errorf("stream %s: %w", f.Field, err)
		}
	}
	return nil
}
