package main

import (
	"github.com/broadinstitute/viral-phylo/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
