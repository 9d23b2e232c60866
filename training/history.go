package training

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReportPoint is one flushed score summary: the iteration it was written at
// and the per-name loss means over that report window.
type ReportPoint struct {
	Iteration int                `json:"iteration"`
	Scores    map[string]float64 `json:"scores"`
}

// ReportHistory accumulates every flushed score summary of a run, for
// later inspection or export as training curves.
type ReportHistory struct {
	points []ReportPoint
}

// Record appends one report's means.
func (h *ReportHistory) Record(iteration int, names []string, means []float64) {
	scores := make(map[string]float64, len(names))
	for i, name := range names {
		scores[name] = means[i]
	}
	h.points = append(h.points, ReportPoint{Iteration: iteration, Scores: scores})
}

// Len returns the number of recorded reports.
func (h *ReportHistory) Len() int {
	return len(h.points)
}

// Points returns the recorded reports in order.
func (h *ReportHistory) Points() []ReportPoint {
	return h.points
}

// Series returns the mean curve for one loss name across all reports.
// Reports missing the name are skipped.
func (h *ReportHistory) Series(name string) []float64 {
	var out []float64
	for _, p := range h.points {
		if v, ok := p.Scores[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// WriteJSON exports the history as indented JSON.
func (h *ReportHistory) WriteJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create history file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(h.points); err != nil {
		return fmt.Errorf("failed to encode history: %v", err)
	}
	return nil
}
