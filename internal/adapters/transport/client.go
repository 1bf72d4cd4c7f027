// Package transport implements domain.Transport over net/http for the
// MIMaaS REST API
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mimaas/internal/core/domain"
	"mimaas/internal/core/version"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/metrics"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 120 * time.Second

	// HeaderRequestID carries the client generated id of each call
	HeaderRequestID = "X-Client-Request-Id"

	// MissingTokenMessage is returned for authenticated calls without a token
	MissingTokenMessage = "No API token found. Please login first or set MIMAAS_API_TOKEN environment variable."
)

// Options configures the Client
type Options struct {
	BaseURL string
	// Timeout bounds connecting and waiting for response headers of one call
	Timeout   time.Duration
	VerifySSL bool
	UserAgent string

	// Session supplies the token for authenticated calls
	Session domain.Session
	// Metrics is optional
	Metrics *metrics.Client
	// HTTP overrides the underlying client, mainly for tests
	HTTP *http.Client
}

// Client sends Calls to the API
type Client struct {
	http  *http.Client
	opts  Options
	base  string
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// New returns a Client; the base URL must be an absolute http(s) URL
func New(o Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, perr.WithField(perr.Configf("invalid API URL %q", o.BaseURL), "api_url")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Session == nil {
		o.Session = NewSession("")
	}

	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Transport: newRoundTripper(o)}
	}
	return &Client{
		http:  hc,
		opts:  o,
		base:  base,
		log:   *logger.Named("transport"),
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// newRoundTripper applies the timeout to dialing, TLS and response headers
// only, so a long artifact stream is not cut off mid-body
func newRoundTripper(o Options) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{Timeout: o.Timeout, KeepAlive: 30 * time.Second}).DialContext
	tr.TLSHandshakeTimeout = o.Timeout
	tr.ResponseHeaderTimeout = o.Timeout
	if !o.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user opted out of verification
	}
	return tr
}

// BaseURL returns the normalized API root
func (c *Client) BaseURL() string { return c.base }

// Session returns the credential holder used for authenticated calls
func (c *Client) Session() domain.Session { return c.opts.Session }

// Do sends one call and returns the raw response whatever its status
// Errors are returned for local and transport failures only
func (c *Client) Do(ctx context.Context, call domain.Call) (*domain.Response, error) {
	id := c.newID()
	ctx = logger.WithCall(ctx, id, call.Op)
	log := logger.C(ctx)

	var token string
	if call.Auth {
		token = c.opts.Session.Token()
		if token == "" {
			c.opts.Metrics.Fail(call.Op, perr.ErrorCodeUnauthorized.String())
			return nil, perr.WithOp(perr.Unauthorizedf(MissingTokenMessage), call.Op)
		}
	}

	body, contentType, err := encodeBody(call)
	if err != nil {
		return nil, perr.WithOp(err, call.Op)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, c.url(call), body)
	if err != nil {
		if cl, ok := body.(io.Closer); ok {
			_ = cl.Close()
		}
		return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnknown, "build %s request", call.Op), call.Op)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, id)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		// the service expects the bare token, not a Bearer scheme
		req.Header.Set("Authorization", token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)

	if err != nil {
		c.opts.Metrics.Observe(call.Op, 0, lat)
		c.opts.Metrics.Fail(call.Op, perr.ErrorCodeNetwork.String())
		log.Debug().Err(err).Str("method", call.Method).Str("path", call.Path).Dur("latency", lat).Msg("mimaas http failed")
		return nil, perr.WithOp(c.networkErr(ctx, err), call.Op)
	}

	c.opts.Metrics.Observe(call.Op, resp.StatusCode, lat)
	if resp.StatusCode >= 400 {
		c.opts.Metrics.Fail(call.Op, fmt.Sprintf("http_%dxx", resp.StatusCode/100))
	}
	log.Debug().
		Str("method", call.Method).
		Str("path", call.Path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int64("content_length", resp.ContentLength).
		Msg("mimaas http response")

	return &domain.Response{Status: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

func (c *Client) url(call domain.Call) string {
	u := c.base + call.Path
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}
	return u
}

// networkErr maps a transport failure to a Network error with actionable text
func (c *Client) networkErr(ctx context.Context, err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return perr.Wrapf(err, perr.ErrorCodeNetwork, "Request cancelled")
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()):
		return perr.Wrapf(err, perr.ErrorCodeNetwork, "Request timeout after %s", seconds(c.opts.Timeout))
	default:
		return perr.Wrapf(err, perr.ErrorCodeNetwork, "Failed to connect to %s", c.base)
	}
}

// encodeBody returns the request body for call and its content type
// A nil body means the call carries none
func encodeBody(call domain.Call) (io.Reader, string, error) {
	switch {
	case len(call.Files) > 0 || len(call.Fields) > 0:
		rc, ct := multipartBody(call.Fields, call.Files)
		return rc, ct, nil
	case call.JSON != nil:
		b, err := json.Marshal(call.JSON)
		if err != nil {
			return nil, "", perr.Wrapf(err, perr.ErrorCodeJSON, "encode %s body", call.Op)
		}
		return bytes.NewReader(b), "application/json", nil
	default:
		return nil, "", nil
	}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
