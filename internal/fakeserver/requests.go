package fakeserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"slices"
	"strconv"

	"mimaas/internal/core/domain"
	perr "mimaas/internal/platform/errors"
	pnet "mimaas/internal/platform/net"
	phttp "mimaas/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUpload = 64 << 20

// tfliteMagic is the flatbuffer file identifier at offset 4 of a .tflite model
var tfliteMagic = []byte("TFL3")

// render builds the wire form of req; caller holds s.mu
func (s *Server) render(req *evalRequest) domain.Request {
	out := domain.Request{
		ID:         req.id,
		Status:     req.status(),
		Board:      req.board,
		Quantize:   req.quantize,
		Network:    req.network,
		FolderName: req.folder,
	}
	switch out.Status {
	case domain.StatusDone:
		res := s.opts.Result
		out.Results = &res
	case domain.StatusError:
		out.ErrorMessage = req.failMsg
	}
	return out
}

// readModel pulls the board field and the network file out of a multipart form
func readModel(w http.ResponseWriter, r *http.Request) (board, name string, model []byte, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return "", "", nil, perr.Validationf("Invalid multipart body")
	}
	board = r.FormValue("board")
	if board == "" {
		return "", "", nil, perr.Validationf("Board is required")
	}
	f, hdr, err := r.FormFile("network")
	if err != nil {
		return "", "", nil, perr.Validationf("Network file is required")
	}
	defer f.Close()
	model, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, perr.Validationf("Invalid network file")
	}
	return board, path.Base(hdr.Filename), model, nil
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	board, name, model, err := readModel(w, r)
	if err != nil {
		phttp.Error(w, err)
		return
	}
	quantize, _ := strconv.ParseBool(r.FormValue("quantize"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[board]; !ok {
		phttp.Message(w, http.StatusBadRequest, "Invalid board")
		return
	}
	u := s.users[pnet.User(r.Context())]
	if u == nil {
		phttp.Message(w, http.StatusUnauthorized, "Invalid API token")
		return
	}
	if u.runs <= 0 {
		phttp.Error(w, perr.QuotaExceeded(0))
		return
	}
	u.runs--

	s.nextReq++
	tag := uuid.NewString()
	req := &evalRequest{
		id:       s.nextReq,
		owner:    u.username,
		board:    board,
		quantize: quantize,
		network:  fmt.Sprintf("uploads/%s_%s", tag, name),
		folder:   fmt.Sprintf("req_%d_%s", s.nextReq, tag[:8]),
		model:    model,
		script:   append([]domain.Status(nil), s.opts.Progression...),
		failMsg:  s.opts.FailMessage,
	}
	s.requests[req.id] = req
	s.updateQueueDepth()

	phttp.JSON(w, http.StatusCreated, s.render(req))
}

// lookup finds request id owned by the caller; caller holds s.mu
func (s *Server) lookup(r *http.Request) (*evalRequest, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, false
	}
	req, ok := s.requests[id]
	if !ok || req.owner != pnet.User(r.Context()) {
		return nil, false
	}
	return req, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.lookup(r)
	if !ok {
		phttp.Message(w, http.StatusNotFound, "Request not found")
		return
	}
	if req.step < len(req.script)-1 {
		req.step++
		s.updateQueueDepth()
	}
	phttp.JSON(w, http.StatusOK, s.render(req))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	board := r.URL.Query().Get("board")
	user := pnet.User(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Request{}
	for _, req := range s.requests {
		if req.owner != user {
			continue
		}
		if status != "" && req.status() != status {
			continue
		}
		if board != "" && req.board != board {
			continue
		}
		out = append(out, s.render(req))
	}
	slices.SortFunc(out, func(a, b domain.Request) int { return int(b.ID - a.ID) })
	phttp.JSON(w, http.StatusOK, out)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.lookup(r)
	if !ok {
		phttp.Message(w, http.StatusNotFound, "Request not found")
		return
	}
	delete(s.requests, req.id)
	s.updateQueueDepth()
	phttp.Message(w, http.StatusOK, "Request deleted")
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	board, _, model, err := readModel(w, r)
	if err != nil {
		phttp.Error(w, err)
		return
	}

	s.mu.Lock()
	b, ok := s.boards[board]
	s.mu.Unlock()
	if !ok {
		phttp.Message(w, http.StatusBadRequest, "Invalid board")
		return
	}

	rep := domain.ValidationReport{Errors: []string{}, Warnings: []string{}}
	switch {
	case len(model) == 0:
		rep.Errors = append(rep.Errors, "Model file is empty")
	case len(model) < 8 || !bytes.Equal(model[4:8], tfliteMagic):
		rep.Errors = append(rep.Errors, "File is not a valid TFLite model")
	}
	if len(model) > b.RAMSizeBytes() {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("Model size (%d bytes) exceeds board RAM (%d KB)", len(model), b.RAMSizeKB))
	}
	rep.Valid = len(rep.Errors) == 0
	phttp.JSON(w, http.StatusOK, rep)
}
