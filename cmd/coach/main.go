// Package main is the single-binary entrypoint for coach.
package main

import "github.com/salescoach/coach/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
