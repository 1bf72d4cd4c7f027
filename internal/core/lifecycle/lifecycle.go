// Package lifecycle submits evaluation requests, observes their remote status
// and retrieves their artifacts
//
// The package never infers a terminal state locally. Every status it reports
// is what the service returned for the most recent fetch
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"mimaas/internal/core/domain"
	"mimaas/internal/core/exchange"
	"mimaas/internal/platform/clock"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/validate"
)

const (
	pathRequests = "/api/requests/"
	pathValidate = "/api/validate"

	// modelContentType is sent for every uploaded model part
	modelContentType = "application/octet-stream"
	// defaultUploadName is used when an Upload carries no file name
	defaultUploadName = "model.tflite"
)

// Upload is a model file to send; Body is streamed
type Upload struct {
	Name string
	Body io.Reader
}

// Lifecycle runs request operations against a Transport
type Lifecycle struct {
	t   domain.Transport
	clk clock.Clock
	log *logger.Logger
}

// New returns a Lifecycle; a nil clock means the system clock and a nil
// logger means the "lifecycle" component logger
func New(t domain.Transport, clk clock.Clock, log *logger.Logger) *Lifecycle {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Named("lifecycle")
	}
	return &Lifecycle{t: t, clk: clk, log: log}
}

// Submit uploads a model for evaluation on board and returns the created request
func (l *Lifecycle) Submit(ctx context.Context, up Upload, board string, quantize bool) (domain.Request, error) {
	if err := checkUpload(up, board); err != nil {
		return domain.Request{}, perr.WithOp(err, "submit")
	}

	var doc requestDoc
	err := exchange.JSON(ctx, l.t, domain.Call{
		Op:     "submit",
		Method: http.MethodPost,
		Path:   pathRequests,
		Auth:   true,
		Fields: map[string]string{
			"board":    board,
			"quantize": strconv.FormatBool(quantize),
		},
		Files: []domain.FilePart{modelPart(up)},
	}, &doc)
	if err != nil {
		return domain.Request{}, err
	}

	req := doc.request()
	l.log.Info().Int64("request_id", req.ID).Str("board", req.Board).Str("status", string(req.Status)).Msg("request submitted")
	return req, nil
}

// Fetch returns the current state of request id
// A missing or malformed embedded result yields Results == nil, not an error
func (l *Lifecycle) Fetch(ctx context.Context, id int64) (domain.Request, error) {
	var doc requestDoc
	if err := exchange.JSON(ctx, l.t, domain.Call{
		Op:     "fetch",
		Method: http.MethodGet,
		Path:   requestPath(id),
		Auth:   true,
	}, &doc); err != nil {
		return domain.Request{}, err
	}
	return doc.request(), nil
}

// List returns the caller's requests in server order
func (l *Lifecycle) List(ctx context.Context, f domain.ListFilter) ([]domain.Request, error) {
	if err := validate.Struct(f); err != nil {
		return nil, perr.WithOp(err, "list")
	}

	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Board != "" {
		q.Set("board", f.Board)
	}

	var docs []requestDoc
	if err := exchange.JSON(ctx, l.t, domain.Call{
		Op:     "list",
		Method: http.MethodGet,
		Path:   pathRequests,
		Query:  q,
		Auth:   true,
	}, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Request, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.request())
	}
	return out, nil
}

// Remove deletes request id; deleting an already deleted id fails with NotFound
func (l *Lifecycle) Remove(ctx context.Context, id int64) error {
	if err := exchange.Discard(ctx, l.t, domain.Call{
		Op:     "remove",
		Method: http.MethodDelete,
		Path:   requestPath(id),
		Auth:   true,
	}); err != nil {
		return err
	}
	l.log.Info().Int64("request_id", id).Msg("request deleted")
	return nil
}

// Validate dry-runs a model against board without creating a request
func (l *Lifecycle) Validate(ctx context.Context, up Upload, board string) (domain.ValidationReport, error) {
	if err := checkUpload(up, board); err != nil {
		return domain.ValidationReport{}, perr.WithOp(err, "validate")
	}

	var rep domain.ValidationReport
	if err := exchange.JSON(ctx, l.t, domain.Call{
		Op:     "validate",
		Method: http.MethodPost,
		Path:   pathValidate,
		Auth:   true,
		Fields: map[string]string{"board": board},
		Files:  []domain.FilePart{modelPart(up)},
	}, &rep); err != nil {
		return domain.ValidationReport{}, err
	}
	if rep.Errors == nil {
		rep.Errors = []string{}
	}
	if rep.Warnings == nil {
		rep.Warnings = []string{}
	}
	return rep, nil
}

func checkUpload(up Upload, board string) error {
	if err := validate.Var("board", board, "required"); err != nil {
		return err
	}
	if up.Body == nil {
		return perr.WithField(perr.Validationf("model is required"), "network")
	}
	return nil
}

func modelPart(up Upload) domain.FilePart {
	name := up.Name
	if name == "" {
		name = defaultUploadName
	}
	return domain.FilePart{Field: "network", FileName: name, ContentType: modelContentType, Body: up.Body}
}

func requestPath(id int64) string { return fmt.Sprintf("%s%d", pathRequests, id) }
