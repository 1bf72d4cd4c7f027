package fakeserver

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"mimaas/internal/core/domain"
	phttp "mimaas/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

// snapshot is what artifact writers need, copied out under the lock
type snapshot struct {
	folder  string
	model   []byte
	result  domain.Results
	samples int
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseArtifactKind(chi.URLParam(r, "kind"))
	if !ok {
		phttp.Message(w, http.StatusBadRequest, "Invalid artifact type")
		return
	}

	s.mu.Lock()
	req, found := s.lookup(r)
	if !found {
		s.mu.Unlock()
		phttp.Message(w, http.StatusNotFound, "Request not found")
		return
	}
	if req.status() != domain.StatusDone {
		s.mu.Unlock()
		phttp.Message(w, http.StatusNotFound, "Artifacts not available")
		return
	}
	snap := snapshot{folder: req.folder, model: req.model, result: s.opts.Result, samples: s.opts.Samples}
	s.mu.Unlock()

	w.Header().Set("Content-Type", contentType(kind))
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.FileName()+`"`)
	w.WriteHeader(http.StatusOK)
	_ = writeArtifact(w, kind, snap)
}

func contentType(k domain.ArtifactKind) string {
	switch k {
	case domain.ArtifactRAMReport, domain.ArtifactROMReport:
		return "application/json"
	case domain.ArtifactPowerSummary, domain.ArtifactPowerSamples:
		return "text/csv"
	case domain.ArtifactAll:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

func writeArtifact(w io.Writer, k domain.ArtifactKind, snap snapshot) error {
	switch k {
	case domain.ArtifactRAMReport:
		return memoryReport(w, "ram", snap.result.RAMUsageBytes)
	case domain.ArtifactROMReport:
		return memoryReport(w, "rom", snap.result.ROMUsageBytes)
	case domain.ArtifactPowerSummary:
		return powerSummary(w, snap.result)
	case domain.ArtifactPowerSamples:
		return powerSamples(w, snap.result, snap.samples)
	case domain.ArtifactModel:
		_, err := w.Write(snap.model)
		return err
	default:
		return archive(w, snap)
	}
}

// archive zips every single-file artifact under the request folder
func archive(w io.Writer, snap snapshot) error {
	zw := zip.NewWriter(w)
	for _, k := range domain.ArtifactKinds {
		if k == domain.ArtifactAll {
			continue
		}
		f, err := zw.Create(snap.folder + "/" + k.FileName())
		if err != nil {
			return err
		}
		if err := writeArtifact(f, k, snap); err != nil {
			return err
		}
	}
	return zw.Close()
}

func memoryReport(w io.Writer, region string, used int64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"region": region,
		"total":  used,
		"symbols": []map[string]any{
			{"name": "tensor_arena", "size": used * 3 / 4},
			{"name": "model_data", "size": used / 4},
		},
	})
}

func powerSummary(w io.Writer, res domain.Results) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"metric", "value"})
	_ = cw.Write([]string{"duration_avg_s", ftoa(res.DurationAvgS)})
	_ = cw.Write([]string{"avg_power_uW", ftoa(res.AvgPowerUW)})
	_ = cw.Write([]string{"avg_energy_uJ", ftoa(res.AvgEnergyUJ)})
	cw.Flush()
	return cw.Error()
}

// powerSamples emits n rows of a current trace oscillating around the average power
func powerSamples(w io.Writer, res domain.Results, n int) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"timestamp_us", "current_uA"})
	base := res.AvgPowerUW / 3.3
	for i := range n {
		v := base * (1 + 0.1*math.Sin(float64(i)/16))
		if err := cw.Write([]string{strconv.Itoa(i * 10), ftoa(v)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }
