package align

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Muscle aligns with MUSCLE 3 (-in/-out flag style).
type Muscle struct {
	// Path to the binary; "muscle" from PATH when empty.
	Path string

	// MaxIters caps iterations (-maxiters). Zero leaves the tool default.
	MaxIters int
}

func (m *Muscle) Name() string {
	return "muscle"
}

func (m *Muscle) binary() string {
	if m.Path != "" {
		return m.Path
	}
	return "muscle"
}

func (m *Muscle) args(in, out string) []string {
	args := []string{"-in", in, "-out", out, "-quiet"}
	if m.MaxIters > 0 {
		args = append(args, "-maxiters", fmt.Sprintf("%d", m.MaxIters))
	}
	return args
}

// Version parses the second field of "MUSCLE v3.8.31 by Robert C. Edgar".
func (m *Muscle) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, m.binary(), "-version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("failed to get muscle version: %v", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return "", fmt.Errorf("failed to parse muscle version from %q", out)
	}
	return strings.TrimPrefix(fields[1], "v"), nil
}

func (m *Muscle) Align(ctx context.Context, in, out string) error {
	var errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, m.binary(), m.args(in, out)...)
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run muscle on %s: %v: %s", in, err, errBuf.String())
	}

	return nil
}
