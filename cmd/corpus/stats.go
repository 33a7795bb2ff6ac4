package main

import (
	"fmt"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	docs, err := deps.Documents.CountDocuments(deps.Ctx)
	if err != nil {
		return err
	}
	chunks, err := deps.Chunks.CountChunks(deps.Ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Documents: %d\n", docs)
	fmt.Fprintf(deps.Stdout, "Chunks:    %d\n", chunks)
	return nil
}
