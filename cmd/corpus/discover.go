package main

import (
	"fmt"

	"github.com/fwojciec/corpus"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	urls, err := deps.Seeds.Discover(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", corpus.ErrorMessage(err))
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No sitemap found")
		return nil
	}

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	return nil
}
