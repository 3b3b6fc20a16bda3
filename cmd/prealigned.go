package cmd

import (
	"os"
	"path/filepath"

	"github.com/broadinstitute/viral-phylo/config"
	"github.com/broadinstitute/viral-phylo/internal/fasta"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
	"github.com/broadinstitute/viral-phylo/internal/transfer"
	"github.com/spf13/cobra"
)

// prealignedCmd transfers annotations through alignments computed upstream,
// never invoking an aligner itself.
var prealignedCmd = &cobra.Command{
	Use:   "transfer-prealigned",
	Short: "Transfer annotations through existing alignment FASTAs",
	Long: `Transfer-prealigned consumes gapped alignment FASTAs produced upstream,
each holding the reference row plus one or more assembly rows. The
reference row is found by --ref-id (default: the first record). Every
other row gets the reference's annotations mapped onto it through that
alignment; columns gapped in both rows of a pair are projected out first.`,
	Run:                        runPrealigned,
	SuggestionsMinimumDistance: 3,
}

func init() {
	prealignedCmd.Flags().StringSliceP("alignment", "a", nil, "gapped alignment FASTA (repeatable, one per chromosome)")
	prealignedCmd.Flags().StringP("ref-tbl", "t", "", "reference feature tables (.tbl)")
	prealignedCmd.Flags().String("ref-id", "", "sequence ID of the reference row (default: first record of each alignment)")
	prealignedCmd.Flags().StringP("out-dir", "o", ".", "directory for the output feature tables")
	prealignedCmd.Flags().String("report", "", "write a JSON diagnostics report to this path")

	prealignedCmd.MarkFlagRequired("alignment")
	prealignedCmd.MarkFlagRequired("ref-tbl")

	addTransferFlags(prealignedCmd)
	addRunFlags(prealignedCmd)

	RootCmd.AddCommand(prealignedCmd)
}

func runPrealigned(cmd *cobra.Command, args []string) {
	alignments, _ := cmd.Flags().GetStringSlice("alignment")
	tblPath, _ := cmd.Flags().GetString("ref-tbl")
	refID, _ := cmd.Flags().GetString("ref-id")
	outDir, _ := cmd.Flags().GetString("out-dir")
	reportPath, _ := cmd.Flags().GetString("report")

	bindConfigFlags(cmd)
	c := config.New()
	opts, err := transferOptions(c)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	tables, err := featuretable.ParseAllFile(tblPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		stderr.Fatalf("%v", err)
	}

	var jobs []transfer.Job
	for _, path := range alignments {
		records, err := fasta.Read(path)
		if err != nil {
			stderr.Fatalf("%v", err)
		}
		if len(records) < 2 {
			stderr.Fatalf("%s holds %d sequences, expected a reference row plus at least one assembly row", path, len(records))
		}

		refIdx := 0
		if refID != "" {
			refIdx = -1
			for i, r := range records {
				if r.ID == refID {
					refIdx = i
					break
				}
			}
			if refIdx < 0 {
				stderr.Fatalf("%s has no row named %s", path, refID)
			}
		}
		ref := records[refIdx]

		tbl, err := tableFor(tables, ref.ID)
		if err != nil {
			stderr.Fatalf("%v", err)
		}

		for i, rec := range records {
			if i == refIdx {
				continue
			}
			jobs = append(jobs, transfer.Job{
				RefID:         ref.ID,
				TargetID:      rec.ID,
				RefAligned:    ref.Seq,
				TargetAligned: rec.Seq,
				Table:         tbl,
				OutPath:       filepath.Join(outDir, fasta.FileName(rec.ID)+".tbl"),
			})
		}
	}

	report, runErr := transfer.Run(cmd.Context(), jobs, transfer.DriverOptions{
		Workers:  c.Run.Workers,
		Transfer: opts,
	})
	finishRun(report, runErr, reportPath)
}
