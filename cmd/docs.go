package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// docsCmd regenerates the Markdown command reference under ./docs.
var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate Markdown documentation for the commands",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		if err := doc.GenMarkdownTree(RootCmd, "./docs"); err != nil {
			stderr.Fatalf("%v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}
