// Command lyoptim runs the primary-drying staged NLP solver and its
// sequential baseline against registered scenarios, and persists
// benchmark-schema records for comparison.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}
	return 0
}
