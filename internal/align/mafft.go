package align

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Mafft aligns with MAFFT. MAFFT writes the alignment to stdout, so Align
// captures it into the output path.
type Mafft struct {
	// Path to the binary; "mafft" from PATH when empty.
	Path string

	// MaxIters caps the refinement iterations (--maxiterate). Zero leaves
	// the tool default.
	MaxIters int
}

func (m *Mafft) Name() string {
	return "mafft"
}

func (m *Mafft) binary() string {
	if m.Path != "" {
		return m.Path
	}
	return "mafft"
}

func (m *Mafft) args(in string) []string {
	args := []string{"--auto", "--preservecase", "--quiet"}
	if m.MaxIters > 0 {
		args = append(args, "--maxiterate", fmt.Sprintf("%d", m.MaxIters))
	}
	return append(args, in)
}

// Version parses "v7.505 (2022/Apr/10)" style output from --version.
func (m *Mafft) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, m.binary(), "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("failed to get mafft version: %v", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("failed to parse mafft version from %q", out)
	}
	return strings.TrimPrefix(fields[0], "v"), nil
}

func (m *Mafft) Align(ctx context.Context, in, out string) error {
	outFile, err := os.Create(out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	var errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, m.binary(), m.args(in)...)
	cmd.Stdout = outFile
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run mafft on %s: %v: %s", in, err, errBuf.String())
	}

	return nil
}
