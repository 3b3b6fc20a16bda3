package cmd

import (
	"os"

	"github.com/broadinstitute/viral-phylo/config"
	"github.com/broadinstitute/viral-phylo/internal/fasta"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
	"github.com/broadinstitute/viral-phylo/internal/transfer"
	"github.com/spf13/cobra"
)

// multiCmd runs the transfer across every chromosome of a segmented or
// multi-chromosome genome.
var multiCmd = &cobra.Command{
	Use:   "transfer-multi",
	Short: "Transfer annotations across every chromosome of a multi-chromosome genome",
	Long: `Transfer-multi pairs each reference chromosome with a target assembly
chromosome (by name, or through an explicit --pairs list), aligns and
transfers each pair independently in a bounded worker pool, and writes one
feature table per target chromosome. A reference chromosome with no match
is skipped with a warning unless --strict is set. One chromosome failing
never aborts its siblings.`,
	Run:                        runMulti,
	SuggestionsMinimumDistance: 3,
}

func init() {
	multiCmd.Flags().StringP("ref-fasta", "r", "", "reference genome FASTA, one record per chromosome")
	multiCmd.Flags().StringP("ref-tbl", "t", "", "reference feature tables (.tbl, one '>Feature' block per chromosome)")
	multiCmd.Flags().StringP("target-fasta", "f", "", "new assembly FASTA, one record per chromosome")
	multiCmd.Flags().StringP("out-dir", "o", ".", "directory for the output feature tables")
	multiCmd.Flags().StringP("pairs", "p", "", "explicit chromosome pairing as ref=target,ref=target (default: match by name)")
	multiCmd.Flags().String("report", "", "write a JSON diagnostics report to this path")

	multiCmd.MarkFlagRequired("ref-fasta")
	multiCmd.MarkFlagRequired("ref-tbl")
	multiCmd.MarkFlagRequired("target-fasta")

	addTransferFlags(multiCmd)
	addAlignFlags(multiCmd)
	addRunFlags(multiCmd)

	RootCmd.AddCommand(multiCmd)
}

func runMulti(cmd *cobra.Command, args []string) {
	refPath, _ := cmd.Flags().GetString("ref-fasta")
	tblPath, _ := cmd.Flags().GetString("ref-tbl")
	targetPath, _ := cmd.Flags().GetString("target-fasta")
	outDir, _ := cmd.Flags().GetString("out-dir")
	pairsFlag, _ := cmd.Flags().GetString("pairs")
	reportPath, _ := cmd.Flags().GetString("report")

	bindConfigFlags(cmd)
	c := config.New()
	opts, err := transferOptions(c)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	aligner, err := newAligner(c)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	stderr.Printf("%s", alignerBanner(cmd.Context(), aligner))
	pairs, err := parsePairs(pairsFlag)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	refRecords, err := fasta.Read(refPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	tables, err := featuretable.ParseAllFile(tblPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	targets, err := fasta.Read(targetPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	// a reference chromosome without its table is an inconsistent input,
	// fatal regardless of strictness
	refs := make([]transfer.RefChrom, len(refRecords))
	for i, r := range refRecords {
		tbl, err := tableFor(tables, r.ID)
		if err != nil {
			stderr.Fatalf("%v", err)
		}
		refs[i] = transfer.RefChrom{ID: r.ID, Seq: r.Ungapped(), Table: tbl}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		stderr.Fatalf("%v", err)
	}

	jobs, unmatched, err := transfer.MatchChromosomes(refs, targets, pairs, outDir, c.Run.Strict)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	report, runErr := transfer.Run(cmd.Context(), jobs, transfer.DriverOptions{
		Workers:  c.Run.Workers,
		Aligner:  aligner,
		Transfer: opts,
	})
	report.Unmatched = unmatched
	finishRun(report, runErr, reportPath)
}
