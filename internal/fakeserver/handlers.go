package fakeserver

import (
	"encoding/json"
	"net/http"

	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
	pnet "mimaas/internal/platform/net"
	phttp "mimaas/internal/platform/net/http"
	"mimaas/internal/platform/validate"

	"github.com/go-chi/chi/v5"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return perr.Validationf("Invalid JSON body")
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		phttp.Error(w, err)
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Username]
	if !ok || u.password != in.Password {
		s.mu.Unlock()
		phttp.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	tok := s.issueToken(u.username)
	s.mu.Unlock()

	phttp.JSON(w, http.StatusOK, map[string]string{"api_token": tok})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if err := decodeJSON(w, r, &in); err != nil {
		phttp.Error(w, err)
		return
	}
	if in.Plan == "" {
		in.Plan = "free"
	}
	if err := validate.Struct(in); err != nil {
		phttp.Error(w, err)
		return
	}

	s.mu.Lock()
	if _, exists := s.users[in.Username]; exists {
		s.mu.Unlock()
		phttp.Message(w, http.StatusBadRequest, "User already exists")
		return
	}
	if !s.knownPlan(in.Plan) {
		s.mu.Unlock()
		phttp.Message(w, http.StatusBadRequest, "Invalid plan")
		return
	}
	s.nextUser++
	s.users[in.Username] = &account{
		id: s.nextUser, username: in.Username, password: in.Password, email: in.Email,
		firstName: in.FirstName, surname: in.Surname, plan: in.Plan, runs: s.planRuns(in.Plan),
	}
	tok := s.issueToken(in.Username)
	s.mu.Unlock()

	phttp.JSON(w, http.StatusCreated, map[string]string{"api_token": tok, "message": "User registered successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	u := s.users[pnet.User(r.Context())]
	s.mu.Unlock()
	if u == nil {
		phttp.Message(w, http.StatusUnauthorized, "Invalid API token")
		return
	}
	phttp.JSON(w, http.StatusOK, map[string]any{
		"id": u.id, "username": u.username, "email": u.email, "first_name": u.firstName,
		"surname": u.surname, "available_runs": u.runs, "plan": u.plan,
	})
}

// boardJSON renders the wire form with figures nested under specifications
func boardJSON(b domain.Board) map[string]any {
	return map[string]any{
		"name": b.Name, "variant": b.Variant, "board_type": b.BoardType, "available_count": b.AvailableCount,
		"specifications": map[string]any{
			"flash_size": b.FlashSizeKB, "ram_size": b.RAMSizeKB,
			"max_available_tensor_arena_size": b.MaxTensorArenaKB, "voltage": b.VoltageMV,
		},
	}
}

func (s *Server) handleBoards(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, boardJSON(s.boards[name]))
	}
	s.mu.Unlock()
	phttp.JSON(w, http.StatusOK, map[string]any{"boards": out})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	b, ok := s.boards[chi.URLParam(r, "name")]
	s.mu.Unlock()
	if !ok {
		phttp.Message(w, http.StatusNotFound, "Board not found")
		return
	}
	phttp.JSON(w, http.StatusOK, boardJSON(b))
}

func (s *Server) handleBoardStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[name]
	if !ok {
		phttp.Message(w, http.StatusNotFound, "Board not found")
		return
	}
	busy, queued := 0, 0
	for _, req := range s.requests {
		if req.board != name {
			continue
		}
		switch req.status() {
		case domain.StatusProcessing:
			busy++
		case domain.StatusPending:
			queued++
		}
	}
	phttp.JSON(w, http.StatusOK, map[string]any{
		"board": name, "total": b.AvailableCount, "busy": min(busy, b.AvailableCount),
		"available": max(b.AvailableCount-busy, 0), "queue_length": queued,
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	plans := append([]domain.Plan(nil), s.plans...)
	s.mu.Unlock()
	phttp.JSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// knownPlan reports whether name is offered; caller holds s.mu
func (s *Server) knownPlan(name string) bool {
	for _, p := range s.plans {
		if p.Name == name {
			return true
		}
	}
	return false
}
