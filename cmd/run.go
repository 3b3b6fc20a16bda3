package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/broadinstitute/viral-phylo/config"
	"github.com/broadinstitute/viral-phylo/internal/align"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
	"github.com/broadinstitute/viral-phylo/internal/transfer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addTransferFlags registers the engine settings shared by every transfer
// command.
func addTransferFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("drop-partial", false, "drop features partly beyond the assembly instead of clipping them to its edge")
	cmd.Flags().String("gap-policy", "drop", "intervals wholly deleted in the assembly: 'drop' or keep a single-base 'point'")
	cmd.Flags().Bool("ignore-ambig-edge", false, "treat '<' and '>' markers in the reference table as exact positions")
	cmd.Flags().StringSlice("exclude-qualifiers", []string{"protein_id"}, "qualifier keys omitted from output tables")
}

// addAlignFlags registers the external aligner settings.
func addAlignFlags(cmd *cobra.Command) {
	cmd.Flags().String("tool", "mafft", "alignment tool: mafft or muscle")
	cmd.Flags().String("tool-path", "", "path to the aligner binary (default: lookup on PATH)")
	cmd.Flags().Int("max-iters", 0, "cap on aligner refinement iterations (0 = tool default)")
}

// addRunFlags registers the multi-chromosome driver settings.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", 0, "max chromosomes transferred in parallel (0 = one worker per chromosome)")
	cmd.Flags().Bool("strict", false, "fail on a reference chromosome with no matching target instead of skipping it")
}

// configBindings maps each viper key to the flag name that overrides it.
var configBindings = map[string]string{
	"transfer.drop-partial":       "drop-partial",
	"transfer.gap-policy":         "gap-policy",
	"transfer.ignore-ambig-edge":  "ignore-ambig-edge",
	"transfer.exclude-qualifiers": "exclude-qualifiers",
	"align.tool":                  "tool",
	"align.path":                  "tool-path",
	"align.max-iters":             "max-iters",
	"run.workers":                 "workers",
	"run.strict":                  "strict",
}

// bindConfigFlags points each viper key at the invoked command's own flag
// instances. Viper keeps one binding per key, so binding must happen at run
// time; binding every command's flags in init() would leave the keys
// pointed at whichever command's init ran last.
func bindConfigFlags(cmd *cobra.Command) {
	for key, name := range configBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// alignerBanner names the external aligner and its version for the run log.
func alignerBanner(ctx context.Context, a align.Aligner) string {
	v, err := a.Version(ctx)
	if err != nil {
		return fmt.Sprintf("aligning with %s (version unknown: %v)", a.Name(), err)
	}
	return fmt.Sprintf("aligning with %s %s", a.Name(), v)
}

// transferOptions converts app settings into engine options.
func transferOptions(c *config.Config) (transfer.Options, error) {
	policy, err := transfer.ParseGapPolicy(c.Transfer.GapPolicy)
	if err != nil {
		return transfer.Options{}, err
	}

	return transfer.Options{
		DropPartial:       c.Transfer.DropPartial,
		GapPolicy:         policy,
		IgnoreAmbigEdge:   c.Transfer.IgnoreAmbigEdge,
		ExcludeQualifiers: c.Transfer.ExcludeQualifiers,
	}, nil
}

// newAligner builds the configured external aligner.
func newAligner(c *config.Config) (align.Aligner, error) {
	return align.New(c.Align.Tool, c.Align.Path, c.Align.MaxIters)
}

// tableFor finds the feature table whose sequence ID names the chromosome.
// Tables fetched from GenBank often carry "gb|ACCESSION|" style IDs, so
// containment counts when no exact match exists.
func tableFor(tables []*featuretable.Table, id string) (*featuretable.Table, error) {
	for _, t := range tables {
		if t.SeqID == id {
			return t, nil
		}
	}
	for _, t := range tables {
		if strings.Contains(t.SeqID, id) || strings.Contains(id, t.SeqID) {
			return t, nil
		}
	}

	return nil, fmt.Errorf("no feature table for chromosome %s", id)
}

// parsePairs reads an explicit "ref=target,ref=target" chromosome pairing.
func parsePairs(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}

	pairs := make(map[string]string)
	for _, p := range strings.Split(s, ",") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			return nil, fmt.Errorf("malformed chromosome pair %q (expected ref=target)", p)
		}
		pairs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}

	return pairs, nil
}

// finishRun prints the human summary, writes the optional JSON report, and
// exits nonzero when chromosomes failed.
func finishRun(report *transfer.RunReport, runErr error, jsonPath string) {
	report.Summary(os.Stdout)

	if jsonPath != "" {
		if err := report.WriteJSON(jsonPath); err != nil {
			stderr.Fatalf("%v", err)
		}
	}

	if runErr != nil {
		stderr.Fatalf("%v", runErr)
	}
	if failed := report.Failed(); failed > 0 {
		stderr.Fatalf("%d of %d chromosomes failed", failed, len(report.Results))
	}
}
