package cmd

import (
	"os"

	"github.com/broadinstitute/viral-phylo/internal/fasta"
	"github.com/spf13/cobra"
)

// splitCmd breaks a multi-chromosome FASTA into one file per chromosome,
// ready for single-chromosome transfer runs.
var splitCmd = &cobra.Command{
	Use:                        "split [genome.fasta]",
	Short:                      "Split a multi-chromosome FASTA into one file per chromosome",
	Args:                       cobra.ExactArgs(1),
	Run:                        runSplit,
	SuggestionsMinimumDistance: 3,
}

func init() {
	splitCmd.Flags().StringP("out-dir", "o", ".", "directory for the per-chromosome FASTA files")

	RootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) {
	outDir, _ := cmd.Flags().GetString("out-dir")

	records, err := fasta.Read(args[0])
	if err != nil {
		stderr.Fatalf("%v", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		stderr.Fatalf("%v", err)
	}

	paths, err := fasta.Split(records, outDir)
	if err != nil {
		stderr.Fatalf("%v", err)
	}

	lengths := fasta.Lengths(records)
	for i, r := range records {
		stderr.Printf("%s\t%d bp\t%s", r.ID, lengths[r.ID], paths[i])
	}
}
