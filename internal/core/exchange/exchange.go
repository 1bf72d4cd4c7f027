// Package exchange runs one Call through a Transport and turns the raw
// response into either a decoded value or a classified failure
package exchange

import (
	"context"
	"encoding/json"
	"io"

	"mimaas/internal/core/classify"
	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
)

const (
	// maxBody caps JSON documents read into memory
	maxBody = 8 << 20
	// maxErrBody caps the diagnostic body read from a failed response
	maxErrBody = 64 << 10
)

// Open performs c and classifies the status
// On success the caller owns resp.Body and must close it
func Open(ctx context.Context, t domain.Transport, c domain.Call) (*domain.Response, error) {
	resp, err := t.Do(ctx, c)
	if err != nil {
		return nil, perr.WithOp(err, c.Op)
	}
	if resp.Status < 400 {
		return resp, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	_ = drainAndClose(resp.Body)
	return nil, perr.WithOp(classify.Classify(resp.Status, body), c.Op)
}

// Bytes performs c and returns the whole (bounded) success body
func Bytes(ctx context.Context, t domain.Transport, c domain.Call) ([]byte, error) {
	resp, err := Open(ctx, t, c)
	if err != nil {
		return nil, err
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeNetwork, "read %s response", c.Op), c.Op)
	}
	return b, nil
}

// JSON performs c and decodes the success body into out
func JSON(ctx context.Context, t domain.Transport, c domain.Call, out any) error {
	b, err := Bytes(ctx, t, c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s response", c.Op), c.Op)
	}
	return nil
}

// Discard performs c and drops the success body
func Discard(ctx context.Context, t domain.Transport, c domain.Call) error {
	resp, err := Open(ctx, t, c)
	if err != nil {
		return err
	}
	_ = drainAndClose(resp.Body)
	return nil
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
