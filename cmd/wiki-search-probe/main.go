// Probe program for the Wikipedia search client: runs document retrieval
// phrases for a few claims against the live API and prints the hits with
// their page ids.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/feverpipe/internal/extract"
	"github.com/ppiankov/feverpipe/internal/logging"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/wiki"
)

func main() {
	fmt.Println("=== Wikipedia Search Probe ===")
	fmt.Println()

	claims := os.Args[1:]
	if len(claims) == 0 {
		claims = []string{
			"Savages was directed by Oliver Stone.",
			"Nikolaj Coster-Waldau worked with the Fox Broadcasting Company.",
		}
	}

	logger, err := logging.New("console", "info", false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := model.DefaultConfig()
	cfg.Search.MaxAttempts = 3
	client := wiki.NewClient(cfg.Search, logger)
	phrases := extract.NewPhraseExtractor()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, claim := range claims {
		fmt.Printf("Claim: %s\n", claim)
		fmt.Println(strings.Repeat("-", 60))

		for _, phrase := range append(phrases.Phrases(claim), claim) {
			results, err := client.Search(ctx, phrase, cfg.Retrieval.MaxPagesPerQuery)
			if err != nil {
				fmt.Printf("  %q: error: %v\n", phrase, err)
				continue
			}
			fmt.Printf("  %q: %d hits\n", phrase, len(results))
			for _, r := range results {
				fmt.Printf("     - %-40s %s\n", wiki.PageID(r.Title), r.Snippet)
			}
		}
		fmt.Println()
	}

	fmt.Println("=== Probe Complete ===")
}
