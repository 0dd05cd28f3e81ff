// Command eses is the Endangered Species Expert System.
//
// Usage:
//
//	eses                    Run the interactive form
//	eses infer              Identify a species from four answers
//	eses batch FILE         Evaluate a CSV of queries
//	eses import CSV         Load a dataset into SQLite
//	eses stats              Dataset statistics
//	eses rules              List the inference rules
//	eses events             JSONL event log viewer
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
