package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/filesort/internal/model"
)

const banner = "═══════════════════════════════════════════════════════════"

// decision is one line of machine-readable output
type decision struct {
	Path       string         `json:"path"`
	Category   model.Category `json:"category,omitempty"`
	Source     model.Source   `json:"source,omitempty"`
	Confidence float64        `json:"confidence"`
	Error      string         `json:"error,omitempty"`
}

func newDecision(path string, c *model.Classification, err error) decision {
	d := decision{Path: path}
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Category = c.Category
	d.Source = c.Source
	d.Confidence = c.Confidence
	return d
}

func printDecision(w io.Writer, d decision) {
	if d.Error != "" {
		fmt.Fprintf(w, "✗ %s: %s\n", d.Path, d.Error)
		return
	}
	fmt.Fprintf(w, "%s → %s (%s, %.2f)\n", d.Path, d.Category, d.Source, d.Confidence)
}

func printDecisions(w io.Writer, decisions []decision, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(decisions); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	}
	for _, d := range decisions {
		printDecision(w, d)
	}
	return nil
}

func printJSONLine(w io.Writer, d decision) error {
	return json.NewEncoder(w).Encode(d)
}
