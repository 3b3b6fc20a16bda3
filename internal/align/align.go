// Package align invokes external pairwise/multiple aligners. The rest of
// the tool depends only on the Aligner capability: something that turns a
// multi-FASTA into a gapped alignment FASTA.
package align

import (
	"context"
	"fmt"
	"strings"
)

// Aligner is an external alignment tool. Align reads the multi-FASTA at in
// and writes an equal-length gapped FASTA to out. Cancelling the context
// kills the tool; the caller abandons that unit of work.
type Aligner interface {
	Name() string
	Version(ctx context.Context) (string, error)
	Align(ctx context.Context, in, out string) error
}

// New returns the aligner for the tool name passed. path overrides the
// binary looked up on PATH; maxIters caps refinement iterations (0 leaves
// the tool's default).
func New(tool, path string, maxIters int) (Aligner, error) {
	switch strings.ToLower(tool) {
	case "", "mafft":
		return &Mafft{Path: path, MaxIters: maxIters}, nil
	case "muscle":
		return &Muscle{Path: path, MaxIters: maxIters}, nil
	}

	return nil, fmt.Errorf("unknown aligner %q (expected mafft or muscle)", tool)
}
