package cmd

import (
	"github.com/broadinstitute/viral-phylo/config"
	"github.com/broadinstitute/viral-phylo/internal/fasta"
	"github.com/broadinstitute/viral-phylo/internal/featuretable"
	"github.com/broadinstitute/viral-phylo/internal/transfer"
	"github.com/spf13/cobra"
)

// transferCmd maps one reference's feature table onto one new assembly.
var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer a reference's feature table onto one new assembly",
	Long: `Transfer aligns the reference genome against a new assembly of a related
genome, maps every feature's coordinates through that alignment, and writes
the resulting feature table for the assembly. Features falling in deleted
regions are dropped; features running past the assembly's edges are clipped
and marked partial.`,
	Run:                        runTransfer,
	SuggestionsMinimumDistance: 3,
}

func init() {
	transferCmd.Flags().StringP("ref-fasta", "r", "", "reference genome FASTA (one record)")
	transferCmd.Flags().StringP("ref-tbl", "t", "", "reference feature table (.tbl)")
	transferCmd.Flags().StringP("target-fasta", "f", "", "new assembly FASTA (one record)")
	transferCmd.Flags().StringP("out", "o", "", "output feature table path")
	transferCmd.Flags().String("report", "", "write a JSON diagnostics report to this path")

	transferCmd.MarkFlagRequired("ref-fasta")
	transferCmd.MarkFlagRequired("ref-tbl")
	transferCmd.MarkFlagRequired("target-fasta")
	transferCmd.MarkFlagRequired("out")

	addTransferFlags(transferCmd)
	addAlignFlags(transferCmd)

	RootCmd.AddCommand(transferCmd)
}

func runTransfer(cmd *cobra.Command, args []string) {
	refPath, _ := cmd.Flags().GetString("ref-fasta")
	tblPath, _ := cmd.Flags().GetString("ref-tbl")
	targetPath, _ := cmd.Flags().GetString("target-fasta")
	outPath, _ := cmd.Flags().GetString("out")
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

	refs, err := fasta.Read(refPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if len(refs) != 1 {
		stderr.Fatalf("%s holds %d sequences, expected 1 (use transfer-multi for multi-chromosome genomes)", refPath, len(refs))
	}
	targets, err := fasta.Read(targetPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if len(targets) != 1 {
		stderr.Fatalf("%s holds %d sequences, expected 1", targetPath, len(targets))
	}
	table, err := featuretable.ParseFile(tblPath)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	jobs := []transfer.Job{{
		RefID:     refs[0].ID,
		TargetID:  targets[0].ID,
		RefSeq:    refs[0].Ungapped(),
		TargetSeq: targets[0].Ungapped(),
		Table:     table,
		OutPath:   outPath,
	}}

	report, runErr := transfer.Run(cmd.Context(), jobs, transfer.DriverOptions{
		Workers:  1,
		Aligner:  aligner,
		Transfer: opts,
	})
	finishRun(report, runErr, reportPath)
}
