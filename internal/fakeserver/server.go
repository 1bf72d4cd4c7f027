// Package fakeserver is an in-memory implementation of the MIMaaS HTTP API
// for tests and local development. Request status follows a scripted
// progression that advances one step per fetch
package fakeserver

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/metrics"
	"mimaas/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
)

// DefaultProgression is what a new request walks through: the submit
// response shows the first status and each fetch advances one step
var DefaultProgression = []domain.Status{domain.StatusPending, domain.StatusProcessing, domain.StatusDone}

// Options configures a Server; zero values take the seeded defaults
type Options struct {
	Boards      []domain.Board
	Plans       []domain.Plan
	Progression []domain.Status
	// FailMessage is reported as error_message when a progression ends in error
	FailMessage string
	Result      domain.Results
	// Samples is the number of rows in the power samples artifact
	Samples int
	Metrics *metrics.Server
	// Slow marks slow requests in the access log
	Slow time.Duration
}

type account struct {
	id        int64
	username  string
	password  string
	email     string
	firstName string
	surname   string
	plan      string
	runs      int
}

type evalRequest struct {
	id       int64
	owner    string
	board    string
	quantize bool
	network  string
	folder   string
	model    []byte
	script   []domain.Status
	step     int
	failMsg  string
}

func (r *evalRequest) status() domain.Status { return r.script[r.step] }

// Server holds the whole fake service state behind one mutex
type Server struct {
	mu       sync.Mutex
	opts     Options
	boards   map[string]domain.Board
	order    []string
	plans    []domain.Plan
	users    map[string]*account
	tokens   map[string]string
	requests map[int64]*evalRequest
	nextUser int64
	nextReq  int64
	router   chi.Router
}

// New returns a Server seeded from o
func New(o Options) *Server {
	if len(o.Boards) == 0 {
		o.Boards = seedBoards()
	}
	if len(o.Plans) == 0 {
		o.Plans = seedPlans()
	}
	if len(o.Progression) == 0 {
		o.Progression = DefaultProgression
	}
	if o.Result == (domain.Results{}) {
		o.Result = seedResult()
	}
	if o.Samples <= 0 {
		o.Samples = 2000
	}

	s := &Server{
		opts:     o,
		boards:   map[string]domain.Board{},
		plans:    o.Plans,
		users:    map[string]*account{},
		tokens:   map[string]string{},
		requests: map[int64]*evalRequest{},
	}
	for _, b := range o.Boards {
		s.boards[b.Name] = b
		s.order = append(s.order, b.Name)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	for _, mw := range middleware.Defaults() {
		r.Use(mw)
	}
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: s.opts.Slow, Metrics: s.opts.Metrics}))

	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)

	r.Get("/api/boards", s.handleBoards)
	r.Get("/api/boards/{name}", s.handleBoard)
	r.Get("/api/boards/{name}/status", s.handleBoardStatus)
	r.Get("/api/plans", s.handlePlans)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(s))
		r.Get("/me", s.handleMe)
		r.Post("/api/requests/", s.handleSubmit)
		r.Get("/api/requests/", s.handleList)
		r.Get("/api/requests/{id}", s.handleGet)
		r.Delete("/api/requests/{id}", s.handleDelete)
		r.Get("/api/requests/{id}/artifacts/{kind}", s.handleArtifact)
		r.Post("/api/validate", s.handleValidate)
	})
	return r
}

// Parse implements middleware.AuthPort with the literal Authorization header
func (s *Server) Parse(r *http.Request) (string, error) {
	tok := strings.TrimSpace(r.Header.Get("Authorization"))
	if tok == "" {
		return "", perr.Unauthorizedf("Missing API token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.tokens[tok]
	if !ok {
		return "", perr.Unauthorizedf("Invalid API token")
	}
	return user, nil
}

// AddUser creates an account directly and returns its token
// runs < 0 takes the plan's run count
func (s *Server) AddUser(username, password, plan string, runs int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if plan == "" {
		plan = "free"
	}
	if runs < 0 {
		runs = s.planRuns(plan)
	}
	s.nextUser++
	s.users[username] = &account{
		id: s.nextUser, username: username, password: password,
		email: username + "@example.com", firstName: username, surname: "Test",
		plan: plan, runs: runs,
	}
	return s.issueToken(username)
}

// SetRuns overrides the remaining run count of a user
func (s *Server) SetRuns(username string, runs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		u.runs = runs
	}
}

// Script replaces the remaining status progression of request id
// The request immediately reports the first status given
func (s *Server) Script(id int64, statuses ...domain.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok || len(statuses) == 0 {
		return false
	}
	req.script = append([]domain.Status(nil), statuses...)
	req.step = 0
	s.updateQueueDepth()
	return true
}

// Status reports the status request id would currently show without advancing it
func (s *Server) Status(id int64) (domain.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return "", false
	}
	return req.status(), true
}

// issueToken mints a 64 character hex token; caller holds s.mu
func (s *Server) issueToken(username string) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	tok := hex.EncodeToString(b)
	s.tokens[tok] = username
	return tok
}

// planRuns returns the run allowance of a plan; caller holds s.mu
func (s *Server) planRuns(name string) int {
	for _, p := range s.plans {
		if p.Name == name {
			return p.AvailableRuns
		}
	}
	return 0
}

// updateQueueDepth publishes the number of non-terminal requests; caller holds s.mu
func (s *Server) updateQueueDepth() {
	if s.opts.Metrics == nil {
		return
	}
	n := 0
	for _, r := range s.requests {
		if !r.status().Terminal() {
			n++
		}
	}
	s.opts.Metrics.QueueDepth.Set(float64(n))
}
