package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Kind classifies one diagnostic. Drops and truncations are expected
// outcomes of transferring onto draft assemblies, not errors.
type Kind string

const (
	// KindDrop is a feature or interval absent from the output.
	KindDrop Kind = "drop"

	// KindTruncation is an interval clipped at the target's boundary.
	KindTruncation Kind = "truncation"

	// KindLengthChange is an interval whose length changed through indels.
	KindLengthChange Kind = "length-change"

	// KindGapPoint is an interval degenerated to a single base under the
	// point gap policy.
	KindGapPoint Kind = "gap-point"

	// KindQualifierDrop is a coordinate-carrying qualifier that could not
	// be remapped.
	KindQualifierDrop Kind = "qualifier-drop"
)

// Diagnostic is one machine-readable note about a feature's transfer.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Feature string `json:"feature"`
	Detail  string `json:"detail"`
}

// Report is the outcome of transferring one chromosome's annotations.
type Report struct {
	RefID    string `json:"ref"`
	TargetID string `json:"target"`

	// Features seen in the reference table
	Features int `json:"features"`

	// Transferred features present in the output table
	Transferred int `json:"transferred"`

	// Dropped features absent from the output table
	Dropped int `json:"dropped"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

func (r *Report) add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Summary renders the report as a human readable table.
func (r *Report) Summary(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s -> %s\t%d features\t%d transferred\t%d dropped\n",
		r.RefID, r.TargetID, r.Features, r.Transferred, r.Dropped)
	for _, d := range r.Diagnostics {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Kind, d.Feature, d.Detail)
	}

	tw.Flush()
}

// WriteJSON writes the report to the path passed, for machine consumption.
func (r *Report) WriteJSON(path string) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %v", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write the report: %v", err)
	}

	return nil
}
