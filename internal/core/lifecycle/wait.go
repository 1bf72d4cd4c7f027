package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
)

// Wait defaults
const (
	DefaultWaitTimeout  = 600 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// WaitOptions bounds a WaitForCompletion call
// Zero or negative durations take the defaults
type WaitOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	// OnPoll observes every fetched request, including the final one
	OnPoll func(domain.Request)
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultWaitTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	return o
}

// WaitTimeout describes a wait that ran out of budget before a terminal status
type WaitTimeout struct {
	ID      int64
	Timeout time.Duration
	Status  domain.Status
}

func (w *WaitTimeout) Error() string {
	return fmt.Sprintf("Request %d did not complete within %s (status: %s)", w.ID, seconds(w.Timeout), w.Status)
}

// WaitForCompletion polls request id until it is done, failed or out of time
//
// Done with a summary returns the summary. Done without one and Error both
// fail with a Processing error. The timeout is checked after each status is
// observed, so a request that finishes on the boundary is still reported as
// finished. Cancelling ctx stops the wait with a Timeout error wrapping ctx.Err()
func (l *Lifecycle) WaitForCompletion(ctx context.Context, id int64, o WaitOptions) (domain.Results, error) {
	o = o.withDefaults()
	start := l.clk.Now()
	var last domain.Status

	for polls := 1; ; polls++ {
		req, err := l.Fetch(ctx, id)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return domain.Results{}, cancelled(cerr, id, last)
			}
			return domain.Results{}, err
		}
		if o.OnPoll != nil {
			o.OnPoll(req)
		}
		if last != "" && !last.CanAdvance(req.Status) {
			l.log.Warn().Int64("request_id", id).Str("from", string(last)).Str("to", string(req.Status)).Msg("status moved backwards")
		}
		last = req.Status

		switch req.Status {
		case domain.StatusDone:
			if req.Results == nil {
				return domain.Results{}, perr.WithOp(perr.Processingf("Request completed but no results available"), "wait")
			}
			l.log.Debug().Int64("request_id", id).Int("polls", polls).Msg("request completed")
			return *req.Results, nil
		case domain.StatusError:
			msg := req.ErrorMessage
			if msg == "" {
				msg = "Unknown error"
			}
			return domain.Results{}, perr.WithOp(perr.Processingf("%s", msg), "wait")
		}

		if elapsed := l.clk.Now().Sub(start); elapsed > o.Timeout {
			wt := &WaitTimeout{ID: id, Timeout: o.Timeout, Status: req.Status}
			return domain.Results{}, perr.WithOp(perr.Wrap(wt, perr.ErrorCodeTimeout, "wait timed out"), "wait")
		}

		l.log.Debug().Int64("request_id", id).Str("status", string(req.Status)).Dur("next_in", o.PollInterval).Msg("request still running")
		if err := l.clk.Sleep(ctx, o.PollInterval); err != nil {
			return domain.Results{}, cancelled(err, id, last)
		}
	}
}

func cancelled(cause error, id int64, last domain.Status) error {
	if last == "" {
		last = "unknown"
	}
	return perr.WithOp(perr.Wrapf(cause, perr.ErrorCodeTimeout, "wait for request %d cancelled (status: %s)", id, last), "wait")
}

// seconds renders d the way the service documents timeouts, e.g. "600s"
func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
