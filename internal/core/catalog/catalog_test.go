package catalog

import (
	"context"
	"testing"

	"mimaas/internal/core/coretest"
	perr "mimaas/internal/platform/errors"
)

var nrf = map[string]any{
	"name": "nrf5340dk", "variant": "cpuapp", "board_type": "nordic", "available_count": 2,
	"specifications": map[string]any{
		"flash_size": 1024, "ram_size": 512, "max_available_tensor_arena_size": 256, "voltage": 3300,
	},
}

func TestListBoardsFlattensSpecifications(t *testing.T) {
	tr := coretest.NewTransport(coretest.JSON(200, map[string]any{"boards": []any{nrf, map[string]any{"name": "bare", "variant": "", "board_type": "x"}}}))
	boards, err := New(tr).ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("boards = %d", len(boards))
	}
	b := boards[0]
	if b.FlashSizeKB != 1024 || b.RAMSizeKB != 512 || b.MaxTensorArenaKB != 256 || b.VoltageMV != 3300 || b.AvailableCount != 2 {
		t.Fatalf("board = %+v", b)
	}
	if b.FlashSizeBytes() != 1024*1024 {
		t.Fatalf("FlashSizeBytes = %d", b.FlashSizeBytes())
	}
	if boards[1].FlashSizeKB != 0 || boards[1].AvailableCount != 0 {
		t.Fatalf("missing specs should default to zero: %+v", boards[1])
	}
	if c := tr.Last(); c.Path != "/api/boards" || c.Auth {
		t.Fatalf("call = %s auth=%v", c.Path, c.Auth)
	}
}

func TestBoardAndStatus(t *testing.T) {
	tr := coretest.NewTransport(
		coretest.JSON(200, nrf),
		coretest.JSON(200, map[string]any{"available": 2, "busy": 1}),
	)
	c := New(tr)

	b, err := c.Board(context.Background(), "nrf5340dk")
	if err != nil || b.Name != "nrf5340dk" {
		t.Fatalf("Board = %+v, %v", b, err)
	}
	st, err := c.BoardStatus(context.Background(), "nrf5340dk")
	if err != nil {
		t.Fatalf("BoardStatus: %v", err)
	}
	if st["busy"] != float64(1) {
		t.Fatalf("status = %v", st)
	}
	if p := tr.Last().Path; p != "/api/boards/nrf5340dk/status" {
		t.Fatalf("path = %q", p)
	}
}

func TestBoardNotFound(t *testing.T) {
	tr := coretest.NewTransport(coretest.JSON(404, map[string]string{"message": "Board not found"}))
	_, err := New(tr).Board(context.Background(), "ghost")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) || err.Error() != "Board not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestBoardRequiresName(t *testing.T) {
	tr := coretest.NewTransport()
	if _, err := New(tr).Board(context.Background(), ""); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if len(tr.Calls()) != 0 {
		t.Fatalf("network used for invalid input")
	}
}

func TestListPlansDefaultsCurrency(t *testing.T) {
	tr := coretest.NewTransport(coretest.JSON(200, map[string]any{"plans": []any{
		map[string]any{"id": 1, "name": "free", "available_runs": 5, "price": 0},
		map[string]any{"id": 2, "name": "pro plus", "available_runs": 100, "price": 19.5, "currency": "EUR"},
	}}))
	plans, err := New(tr).ListPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if plans[0].Currency != "USD" || plans[1].Currency != "EUR" {
		t.Fatalf("currencies = %q %q", plans[0].Currency, plans[1].Currency)
	}
	if got := plans[0].String(); got != "Free Plan: 5 runs - Free" {
		t.Fatalf("String = %q", got)
	}
	if got := plans[1].String(); got != "Pro Plus Plan: 100 runs - $19.50 EUR" {
		t.Fatalf("String = %q", got)
	}
}
