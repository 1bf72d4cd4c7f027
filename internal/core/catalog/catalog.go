// Package catalog reads the public board and plan listings
package catalog

import (
	"context"
	"net/http"
	"net/url"

	"mimaas/internal/core/domain"
	"mimaas/internal/core/exchange"
	perr "mimaas/internal/platform/errors"
	"mimaas/internal/platform/validate"
)

// Catalog queries unauthenticated listing endpoints
type Catalog struct {
	t domain.Transport
}

// New returns a Catalog over t
func New(t domain.Transport) *Catalog { return &Catalog{t: t} }

// boardDoc is the wire form; hardware figures are nested under specifications
type boardDoc struct {
	Name           string `json:"name"`
	Variant        string `json:"variant"`
	BoardType      string `json:"board_type"`
	AvailableCount int    `json:"available_count"`
	Specifications struct {
		FlashSize      int `json:"flash_size"`
		RAMSize        int `json:"ram_size"`
		MaxTensorArena int `json:"max_available_tensor_arena_size"`
		Voltage        int `json:"voltage"`
	} `json:"specifications"`
}

func (d boardDoc) board() domain.Board {
	return domain.Board{
		Name:             d.Name,
		Variant:          d.Variant,
		BoardType:        d.BoardType,
		FlashSizeKB:      d.Specifications.FlashSize,
		RAMSizeKB:        d.Specifications.RAMSize,
		MaxTensorArenaKB: d.Specifications.MaxTensorArena,
		VoltageMV:        d.Specifications.Voltage,
		AvailableCount:   d.AvailableCount,
	}
}

// ListBoards returns every board type the service offers
func (c *Catalog) ListBoards(ctx context.Context) ([]domain.Board, error) {
	var doc struct {
		Boards []boardDoc `json:"boards"`
	}
	if err := exchange.JSON(ctx, c.t, domain.Call{Op: "list_boards", Method: http.MethodGet, Path: "/api/boards"}, &doc); err != nil {
		return nil, err
	}
	out := make([]domain.Board, 0, len(doc.Boards))
	for _, b := range doc.Boards {
		out = append(out, b.board())
	}
	return out, nil
}

// Board returns one board type by name
func (c *Catalog) Board(ctx context.Context, name string) (domain.Board, error) {
	if err := validate.Var("board", name, "required"); err != nil {
		return domain.Board{}, perr.WithOp(err, "board")
	}
	var d boardDoc
	if err := exchange.JSON(ctx, c.t, domain.Call{Op: "board", Method: http.MethodGet, Path: boardPath(name)}, &d); err != nil {
		return domain.Board{}, err
	}
	return d.board(), nil
}

// BoardStatus returns the free-form availability document for a board
func (c *Catalog) BoardStatus(ctx context.Context, name string) (domain.BoardStatus, error) {
	if err := validate.Var("board", name, "required"); err != nil {
		return nil, perr.WithOp(err, "board_status")
	}
	st := domain.BoardStatus{}
	if err := exchange.JSON(ctx, c.t, domain.Call{Op: "board_status", Method: http.MethodGet, Path: boardPath(name) + "/status"}, &st); err != nil {
		return nil, err
	}
	return st, nil
}

type planDoc struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	AvailableRuns int     `json:"available_runs"`
	Price         float64 `json:"price"`
	Currency      *string `json:"currency"`
}

// ListPlans returns the subscription plans
func (c *Catalog) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var doc struct {
		Plans []planDoc `json:"plans"`
	}
	if err := exchange.JSON(ctx, c.t, domain.Call{Op: "list_plans", Method: http.MethodGet, Path: "/api/plans"}, &doc); err != nil {
		return nil, err
	}
	out := make([]domain.Plan, 0, len(doc.Plans))
	for _, p := range doc.Plans {
		cur := "USD"
		if p.Currency != nil && *p.Currency != "" {
			cur = *p.Currency
		}
		out = append(out, domain.Plan{ID: p.ID, Name: p.Name, AvailableRuns: p.AvailableRuns, Price: p.Price, Currency: cur})
	}
	return out, nil
}

func boardPath(name string) string { return "/api/boards/" + url.PathEscape(name) }
