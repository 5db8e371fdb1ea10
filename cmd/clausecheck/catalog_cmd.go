package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/praxia-labs/clausecheck/pkg/catalog"
	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

func runCatalogCmd(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: clausecheck catalog <stats|list> [flags]")
		return 2
	}

	switch args[0] {
	case "stats":
		return runCatalogStats(args[1:], stdout, stderr)
	case "list":
		return runCatalogList(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown catalog subcommand: %s\n", args[0])
		return 2
	}
}

func runCatalogStats(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog stats", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var jsonOutput bool
	cmd.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	store, err := catalog.NewStore()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading catalogs: %v\n", err)
		return 1
	}

	stats := store.Stats()
	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	fmt.Fprintf(stdout, "%sRequirement Catalogs%s (%d requirements)\n", ColorBold+ColorBlue, ColorReset, stats.TotalRequirements)
	for _, fw := range compliance.SupportedFrameworks() {
		fs := stats.Frameworks[fw]
		fmt.Fprintf(stdout, "  %-6s %d total, %d mandatory, %d optional\n", fw, fs.Total, fs.Mandatory, fs.Optional)
	}
	return 0
}

func runCatalogList(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog list", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		frameworkToken string
		keyword        string
		jsonOutput     bool
	)
	cmd.StringVar(&frameworkToken, "framework", "", "Framework to list (REQUIRED)")
	cmd.StringVar(&keyword, "keyword", "", "Filter by keyword")
	cmd.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	fw, ok := compliance.ParseFramework(frameworkToken)
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown framework %q\n", frameworkToken)
		return 2
	}

	store, err := catalog.NewStore()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading catalogs: %v\n", err)
		return 1
	}

	var reqs []compliance.Requirement
	if keyword != "" {
		reqs = store.SearchKeyword(keyword, fw)
	} else {
		reqs = store.Requirements(fw)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(reqs, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	for _, req := range reqs {
		fmt.Fprintf(stdout, "%s%s%s  %s [%s]\n", ColorGreen, req.ID, ColorReset, req.ArticleReference, req.ClauseType)
		fmt.Fprintf(stdout, "  %s\n", req.Description)
	}
	return 0
}
