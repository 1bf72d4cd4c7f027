package lifecycle

import (
	"bytes"
	"encoding/json"

	"mimaas/internal/core/domain"
)

// requestDoc is the wire form of a request; result is decoded separately
type requestDoc struct {
	ID           int64           `json:"id"`
	Status       domain.Status   `json:"status"`
	Board        string          `json:"board"`
	Quantize     bool            `json:"quantize"`
	Network      string          `json:"network"`
	FolderName   string          `json:"folder_name"`
	ErrorMessage string          `json:"error_message"`
	Result       json.RawMessage `json:"result"`
}

func (d requestDoc) request() domain.Request {
	return domain.Request{
		ID:           d.ID,
		Status:       d.Status,
		Board:        d.Board,
		Quantize:     d.Quantize,
		Network:      d.Network,
		FolderName:   d.FolderName,
		ErrorMessage: d.ErrorMessage,
		Results:      decodeResults(d.Result),
	}
}

// resultDoc requires every summary field; numbers may arrive as floats
type resultDoc struct {
	RAMUsage     *float64 `json:"ram_usage"`
	ROMUsage     *float64 `json:"rom_usage"`
	DurationAvgS *float64 `json:"duration_avg_s"`
	AvgPowerUW   *float64 `json:"avg_power_uW"`
	AvgEnergyUJ  *float64 `json:"avg_energy_uJ"`
}

// decodeResults is best effort: absent, null, malformed or incomplete -> nil
func decodeResults(raw json.RawMessage) *domain.Results {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var rd resultDoc
	if err := json.Unmarshal(raw, &rd); err != nil {
		return nil
	}
	if rd.RAMUsage == nil || rd.ROMUsage == nil || rd.DurationAvgS == nil ||
		rd.AvgPowerUW == nil || rd.AvgEnergyUJ == nil {
		return nil
	}
	return &domain.Results{
		RAMUsageBytes: int64(*rd.RAMUsage),
		ROMUsageBytes: int64(*rd.ROMUsage),
		DurationAvgS:  *rd.DurationAvgS,
		AvgPowerUW:    *rd.AvgPowerUW,
		AvgEnergyUJ:   *rd.AvgEnergyUJ,
	}
}
