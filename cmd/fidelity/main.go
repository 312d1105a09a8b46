// Command fidelity measures the gain and THD+N of an audio round trip.
//
// Usage:
//
//	fidelity run [flags]
//	fidelity analyze [generated.wav recorded.wav]
//	fidelity config init [path]
//	fidelity version
package main

import (
	"os"

	"github.com/cwbudde/algo-fidelity/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
