// Package mimaas is the client for the MIMaaS model evaluation service.
//
// A Client authenticates, uploads TFLite models for evaluation on remote
// microcontroller boards, polls for completion and downloads the resulting
// artifacts:
//
//	c, err := mimaas.New(mimaas.Options{})
//	req, err := c.SubmitFile(ctx, "model.tflite", "nrf5340dk", false)
//	res, err := c.WaitForCompletion(ctx, req.ID, mimaas.WaitOptions{})
package mimaas

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mimaas/internal/adapters/tokenstore"
	"mimaas/internal/adapters/transport"
	"mimaas/internal/core/account"
	"mimaas/internal/core/catalog"
	"mimaas/internal/core/lifecycle"
	"mimaas/internal/platform/config"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Client. Unset fields fall back to the environment
// (MIMAAS_*), then the config file, then built-in defaults; the token also
// consults the token file before the config file
type Options struct {
	APIURL     string
	APIToken   string
	TokenFile  string
	ConfigFile string
	Timeout    time.Duration
	VerifySSL  *bool

	// Registerer receives the client metrics; nil disables them
	Registerer prometheus.Registerer
	// Clock drives polling; nil means the system clock
	Clock Clock
	// HTTPClient replaces the underlying HTTP client
	HTTPClient *http.Client
}

// Settings is the resolved configuration of a Client
type Settings = config.Settings

// Client talks to one MIMaaS deployment. It is safe for concurrent use
type Client struct {
	settings  Settings
	session   *transport.Session
	store     *tokenstore.File
	transport *transport.Client
	lc        *lifecycle.Lifecycle
	acct      *account.Service
	cat       *catalog.Catalog
}

// New resolves configuration and wires a Client.
// An insecure token file that cannot be repaired fails here with ErrConfig
func New(o Options) (*Client, error) {
	s, err := config.Resolve(config.Explicit{
		APIURL:     o.APIURL,
		APIToken:   o.APIToken,
		TokenFile:  o.TokenFile,
		ConfigFile: o.ConfigFile,
		Timeout:    o.Timeout,
		VerifySSL:  o.VerifySSL,
	}, func(path string) (string, error) { return tokenstore.New(path).Load() })
	if err != nil {
		return nil, err
	}

	var m *metrics.Client
	if o.Registerer != nil {
		m = metrics.NewClient(o.Registerer)
	}

	sess := transport.NewSession(s.APIToken)
	tr, err := transport.New(transport.Options{
		BaseURL:   s.APIURL,
		Timeout:   s.Timeout,
		VerifySSL: s.VerifySSL,
		Session:   sess,
		Metrics:   m,
		HTTP:      o.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	store := tokenstore.New(s.TokenFile)
	logger.Named("client").Debug().
		Str("api_url", s.APIURL).
		Interface("sources", s.Sources).
		Bool("authenticated", sess.Token() != "").
		Msg("client configured")

	return &Client{
		settings:  s,
		session:   sess,
		store:     store,
		transport: tr,
		lc:        lifecycle.New(tr, o.Clock, nil),
		acct:      account.New(tr, sess, store, nil),
		cat:       catalog.New(tr),
	}, nil
}

// Settings returns the resolved configuration
func (c *Client) Settings() Settings { return c.settings }

// BaseURL returns the API root in use
func (c *Client) BaseURL() string { return c.transport.BaseURL() }

// TokenFile returns where Login and Register persist the token
func (c *Client) TokenFile() string { return c.store.Path() }

// Token returns the token used for authenticated calls, "" when logged out
func (c *Client) Token() string { return c.session.Token() }

// Authenticated reports whether a token is available
func (c *Client) Authenticated() bool { return c.session.Token() != "" }

// Login exchanges credentials for a token; save persists it to the token file
func (c *Client) Login(ctx context.Context, username, password string, save bool) (string, error) {
	return c.acct.Login(ctx, username, password, save)
}

// Register creates an account and logs in with it; an empty plan means "free"
func (c *Client) Register(ctx context.Context, r Registration, save bool) (string, error) {
	return c.acct.Register(ctx, r, save)
}

// Logout forgets the token and reports whether a saved token file was removed
func (c *Client) Logout() bool { return c.acct.Logout() }

// Profile returns the authenticated user
func (c *Client) Profile(ctx context.Context) (User, error) { return c.acct.Profile(ctx) }

// ListBoards returns every board type the service offers
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) { return c.cat.ListBoards(ctx) }

// Board returns one board type by name
func (c *Client) Board(ctx context.Context, name string) (Board, error) {
	return c.cat.Board(ctx, name)
}

// BoardStatus returns the live availability of a board type
func (c *Client) BoardStatus(ctx context.Context, name string) (BoardStatus, error) {
	return c.cat.BoardStatus(ctx, name)
}

// ListPlans returns the subscription plans
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) { return c.cat.ListPlans(ctx) }

// Submit uploads the model read from r for evaluation on board
func (c *Client) Submit(ctx context.Context, r io.Reader, name, board string, quantize bool) (Request, error) {
	return c.lc.Submit(ctx, lifecycle.Upload{Name: name, Body: r}, board, quantize)
}

// SubmitFile uploads the model at path; a missing file fails with ErrNotFound
// before anything is sent
func (c *Client) SubmitFile(ctx context.Context, path, board string, quantize bool) (Request, error) {
	f, err := openModel(path)
	if err != nil {
		return Request{}, perr.WithOp(err, "submit")
	}
	defer f.Close()
	return c.Submit(ctx, f, filepath.Base(path), board, quantize)
}

// Request fetches the current state of request id
func (c *Client) Request(ctx context.Context, id int64) (Request, error) { return c.lc.Fetch(ctx, id) }

// ListRequests returns the caller's requests, optionally filtered
func (c *Client) ListRequests(ctx context.Context, f ListFilter) ([]Request, error) {
	return c.lc.List(ctx, f)
}

// DeleteRequest removes request id
func (c *Client) DeleteRequest(ctx context.Context, id int64) error { return c.lc.Remove(ctx, id) }

// WaitForCompletion polls request id until it finishes, fails or times out
func (c *Client) WaitForCompletion(ctx context.Context, id int64, o WaitOptions) (Results, error) {
	return c.lc.WaitForCompletion(ctx, id, o)
}

// DownloadArtifact streams one artifact of request id to dest and returns the
// number of bytes written. A dest that is a directory receives the
// artifact's conventional file name
func (c *Client) DownloadArtifact(ctx context.Context, id int64, kind ArtifactKind, dest string, o DownloadOptions) (int64, error) {
	return c.lc.DownloadArtifact(ctx, id, kind, dest, o)
}

func (c *Client) DownloadRAMReport(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactRAMReport, dest, o)
}

func (c *Client) DownloadROMReport(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactROMReport, dest, o)
}

func (c *Client) DownloadPowerSummary(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactPowerSummary, dest, o)
}

func (c *Client) DownloadPowerSamples(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactPowerSamples, dest, o)
}

func (c *Client) DownloadModel(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactModel, dest, o)
}

// DownloadAll fetches every artifact as one zip archive
func (c *Client) DownloadAll(ctx context.Context, id int64, dest string, o DownloadOptions) (int64, error) {
	return c.DownloadArtifact(ctx, id, ArtifactAll, dest, o)
}

// Validate dry-runs the model read from r against board
func (c *Client) Validate(ctx context.Context, r io.Reader, name, board string) (ValidationReport, error) {
	return c.lc.Validate(ctx, lifecycle.Upload{Name: name, Body: r}, board)
}

// ValidateFile dry-runs the model at path; a missing file fails with ErrNotFound
func (c *Client) ValidateFile(ctx context.Context, path, board string) (ValidationReport, error) {
	f, err := openModel(path)
	if err != nil {
		return ValidationReport{}, perr.WithOp(err, "validate")
	}
	defer f.Close()
	return c.Validate(ctx, f, filepath.Base(path), board)
}

func openModel(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.WithField(perr.NotFoundf("Model file not found: %s", path), "network")
		}
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeNotFound, "Model file not readable: %s", path), "network")
	}
	if st, err := f.Stat(); err != nil || st.IsDir() {
		_ = f.Close()
		return nil, perr.WithField(perr.NotFoundf("Model file not found: %s", path), "network")
	}
	return f, nil
}
