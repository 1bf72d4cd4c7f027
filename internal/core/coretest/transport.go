// Package coretest provides scripted collaborators for core package tests
package coretest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"mimaas/internal/core/domain"
)

// Reply is one scripted response, or a transport error when Err is set
type Reply struct {
	Status int
	Body   []byte
	Err    error
}

// JSON builds a Reply with a marshaled body
func JSON(status int, v any) Reply {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Reply{Status: status, Body: b}
}

// Text builds a Reply with a raw body
func Text(status int, s string) Reply { return Reply{Status: status, Body: []byte(s)} }

// Recorded is a Call as observed by Transport, with file bodies read out
type Recorded struct {
	domain.Call
	FileBodies map[string][]byte
}

// Transport replays Replies in order and records every Call
// Once the script is exhausted the last Reply repeats
type Transport struct {
	mu      sync.Mutex
	replies []Reply
	calls   []Recorded
	// OnCall, when set, runs before each reply is returned
	OnCall func(n int, c domain.Call)
}

// NewTransport returns a Transport scripted with rs
func NewTransport(rs ...Reply) *Transport { return &Transport{replies: rs} }

// Push appends more replies to the script
func (t *Transport) Push(rs ...Reply) {
	t.mu.Lock()
	t.replies = append(t.replies, rs...)
	t.mu.Unlock()
}

// Do implements domain.Transport
func (t *Transport) Do(ctx context.Context, c domain.Call) (*domain.Response, error) {
	rec := Recorded{Call: c, FileBodies: map[string][]byte{}}
	for _, f := range c.Files {
		if f.Body == nil {
			continue
		}
		b, err := io.ReadAll(f.Body)
		if err != nil {
			return nil, fmt.Errorf("read file part %s: %w", f.Field, err)
		}
		rec.FileBodies[f.Field] = b
	}

	t.mu.Lock()
	n := len(t.calls)
	t.calls = append(t.calls, rec)
	var r Reply
	switch {
	case len(t.replies) == 0:
		r = Reply{Status: http.StatusOK}
	case n < len(t.replies):
		r = t.replies[n]
	default:
		r = t.replies[len(t.replies)-1]
	}
	hook := t.OnCall
	t.mu.Unlock()

	if hook != nil {
		hook(n, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &domain.Response{
		Status: r.Status,
		Header: http.Header{},
		Body:   io.NopCloser(bytes.NewReader(r.Body)),
	}, nil
}

// Calls returns every recorded call in order
func (t *Transport) Calls() []Recorded {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Recorded, len(t.calls))
	copy(out, t.calls)
	return out
}

// Last returns the most recent call; it panics when none was made
func (t *Transport) Last() Recorded {
	cs := t.Calls()
	return cs[len(cs)-1]
}
