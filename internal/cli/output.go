package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
	"github.com/pfrederiksen/smartplay-booking/internal/logger"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	Result  *booking.Result `json:"result"`
	Summary string          `json:"summary"`
	Metrics logger.Snapshot `json:"metrics"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, out *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeText(w, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, out *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeText outputs the summary followed by a blank line
func writeText(w io.Writer, out *OutputResult) error {
	_, err := fmt.Fprintf(w, "%s\n\n", out.Summary)
	return err
}
