// Package main implements the bslflow CLI. It builds control flow graphs
// from exported BSL syntax trees.
package main

import (
	"os"

	"github.com/l3aro/go-bsl-flow/cmd/bslflow/commands"
)

var version = "dev"

func main() {
	root := commands.RootCmd
	root.Version = version
	root.SetVersionTemplate(`bslflow version {{.Version}}
`)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
