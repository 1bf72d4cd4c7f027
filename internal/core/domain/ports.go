package domain

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// FilePart is one file field of a multipart body
// Body is streamed, never buffered whole by the transport
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Body        io.Reader
}

// Call describes one HTTP exchange with the service
// At most one of JSON and Files/Fields is used as the body
type Call struct {
	Op     string // operation label for logs and metrics
	Method string
	Path   string
	Query  url.Values
	Auth   bool
	JSON   any
	Fields map[string]string
	Files  []FilePart
}

// Response is the raw answer to a Call; the caller owns Body and must close it
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// Transport performs a Call: HTTP verb + URL + auth header
// It returns an error only for transport-level failures, never for a status code
type Transport interface {
	Do(ctx context.Context, c Call) (*Response, error)
}

// TokenStore persists the credential between sessions
// Delete is advisory: it reports whether a stored token was removed
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() bool
}

// Session holds the credential used for authenticated calls
// Implementations must be safe for concurrent reads
type Session interface {
	Token() string
	SetToken(token string)
}
