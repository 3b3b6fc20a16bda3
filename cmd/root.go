// Package cmd is for command line interactions with the viral-phylo application
package cmd

import (
	"log"
	"os"

	"github.com/broadinstitute/viral-phylo/config"
	"github.com/spf13/cobra"
)

// stderr is for user-facing logging; stdout stays clean for piped output.
var stderr = log.New(os.Stderr, "", 0)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "viral-phylo",
	Short: `Transfer GenBank feature annotations from an annotated reference genome
onto new assemblies of related genomes through their pairwise alignments`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		stderr.Fatalf("%v", err)
	}
}

func init() {
	config.SetDefaults()
}
