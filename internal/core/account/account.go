// Package account handles login, registration, the caller's profile and logout
package account

import (
	"context"
	"net/http"
	"strings"

	"mimaas/internal/core/domain"
	"mimaas/internal/core/exchange"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/logger"
	"mimaas/internal/platform/validate"
)

// DefaultPlan is used when a registration names no plan
const DefaultPlan = "free"

// Service runs account operations and keeps the session credential current
type Service struct {
	t     domain.Transport
	sess  domain.Session
	store domain.TokenStore
	log   *logger.Logger
}

// New returns a Service; store may be nil when tokens are never persisted
func New(t domain.Transport, sess domain.Session, store domain.TokenStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Named("account")
	}
	return &Service{t: t, sess: sess, store: store, log: log}
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenDoc struct {
	APIToken string `json:"api_token"`
}

// Login exchanges username and password for an API token
// The token becomes the session credential; with save it is also persisted.
// The session keeps the new token even when persisting it fails
func (s *Service) Login(ctx context.Context, username, password string, save bool) (string, error) {
	in := credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validate.Struct(in); err != nil {
		return "", perr.WithOp(err, "login")
	}
	return s.obtain(ctx, domain.Call{Op: "login", Method: http.MethodPost, Path: "/login", JSON: in}, save)
}

// Register creates an account and logs it in
func (s *Service) Register(ctx context.Context, r domain.Registration, save bool) (string, error) {
	if strings.TrimSpace(r.Plan) == "" {
		r.Plan = DefaultPlan
	}
	if err := validate.Struct(r); err != nil {
		return "", perr.WithOp(err, "register")
	}
	return s.obtain(ctx, domain.Call{Op: "register", Method: http.MethodPost, Path: "/register", JSON: r}, save)
}

func (s *Service) obtain(ctx context.Context, c domain.Call, save bool) (string, error) {
	var doc tokenDoc
	if err := exchange.JSON(ctx, s.t, c, &doc); err != nil {
		return "", err
	}
	tok := strings.TrimSpace(doc.APIToken)
	if tok == "" {
		return "", perr.WithOp(perr.JSONErrf("response has no api_token"), c.Op)
	}
	if !validate.IsAPIToken(tok) {
		s.log.Warn().Str("op", c.Op).Int("len", len(tok)).Msg("service issued a token in an unexpected format")
	}

	s.sess.SetToken(tok)
	if save && s.store != nil {
		if err := s.store.Save(tok); err != nil {
			return "", perr.WithOp(err, c.Op)
		}
	}
	s.log.Info().Str("op", c.Op).Bool("saved", save).Msg("authenticated")
	return tok, nil
}

type userDoc struct {
	ID            int64   `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	FirstName     string  `json:"first_name"`
	Surname       string  `json:"surname"`
	AvailableRuns int     `json:"available_runs"`
	Plan          *string `json:"plan"`
}

// Profile returns the authenticated user's account
func (s *Service) Profile(ctx context.Context) (domain.User, error) {
	var d userDoc
	if err := exchange.JSON(ctx, s.t, domain.Call{Op: "profile", Method: http.MethodGet, Path: "/me", Auth: true}, &d); err != nil {
		return domain.User{}, err
	}
	plan := DefaultPlan
	if d.Plan != nil && *d.Plan != "" {
		plan = *d.Plan
	}
	return domain.User{
		ID:            d.ID,
		Username:      d.Username,
		Email:         d.Email,
		FirstName:     d.FirstName,
		Surname:       d.Surname,
		AvailableRuns: d.AvailableRuns,
		Plan:          plan,
	}, nil
}

// Logout forgets the session credential and deletes the stored token
// The result is advisory: false means there was no stored token to remove
func (s *Service) Logout() bool {
	s.sess.SetToken("")
	if s.store == nil {
		return false
	}
	removed := s.store.Delete()
	s.log.Info().Bool("removed", removed).Msg("logged out")
	return removed
}
