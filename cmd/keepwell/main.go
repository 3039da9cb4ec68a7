// Package main is the single-binary entrypoint for KeepWell.
package main

import "github.com/keepwell-care/keepwell/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
