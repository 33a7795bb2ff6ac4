package main

import (
	"fmt"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	seeds := c.Seeds

	// Optionally expand seeds from the sitemap before crawling.
	if c.Sitemap {
		var expanded []string
		for _, seed := range seeds {
			urls, err := deps.Seeds.Discover(deps.Ctx, seed)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "warning: sitemap discovery failed for %s: %v\n", seed, err)
				continue
			}
			expanded = append(expanded, urls...)
		}
		if len(expanded) > 0 {
			fmt.Fprintf(deps.Stdout, "Discovered %d URLs from sitemaps\n", len(expanded))
			seeds = append(seeds, expanded...)
		}
	}

	stats, err := deps.Pipeline.Run(deps.Ctx, seeds)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Pages crawled:      %d\n", stats.PagesCrawled)
	fmt.Fprintf(deps.Stdout, "Pages failed:       %d\n", stats.PagesFailed)
	if stats.PagesSkippedRobots > 0 {
		fmt.Fprintf(deps.Stdout, "Skipped (robots):   %d\n", stats.PagesSkippedRobots)
	}
	fmt.Fprintf(deps.Stdout, "Documents kept:     %d\n", stats.DocumentsKept)
	filtered := stats.PagesTooShort + stats.PagesWrongLanguage + stats.ExactDuplicates + stats.NearDuplicates
	fmt.Fprintf(deps.Stdout, "Documents filtered: %d\n", filtered)
	fmt.Fprintf(deps.Stdout, "Chunks:             %d\n", stats.TotalChunks)
	fmt.Fprintf(deps.Stdout, "Tokens:             %d\n", stats.TotalTokens)
	if stats.EmbeddingsCreated > 0 {
		fmt.Fprintf(deps.Stdout, "Embeddings:         %d\n", stats.EmbeddingsCreated)
	}
	fmt.Fprintf(deps.Stdout, "Duration:           %.1fs\n", stats.DurationSeconds)
	fmt.Fprintf(deps.Stdout, "Output:             %s\n", stats.OutputPath)
	return nil
}
