package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/praxia-labs/clausecheck/pkg/checker"
	"github.com/praxia-labs/clausecheck/pkg/compliance"
	"github.com/praxia-labs/clausecheck/pkg/config"
	"github.com/praxia-labs/clausecheck/pkg/observability"
)

func runCheckCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("check", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		clausesPath   string
		frameworksCSV string
		documentID    string
		profilesDir   string
		profileCode   string
		otlpEndpoint  string
		jsonOutput    bool
	)

	cmd.StringVar(&clausesPath, "clauses", "", "Path to a JSON file with analyzed clauses, or '-' for stdin (REQUIRED)")
	cmd.StringVar(&frameworksCSV, "frameworks", "GDPR,HIPAA,CCPA,SOX", "Comma-separated frameworks to check")
	cmd.StringVar(&documentID, "document", "", "Document identifier for the report")
	cmd.StringVar(&profilesDir, "profiles", "", "Directory containing assessment profiles")
	cmd.StringVar(&profileCode, "profile", "", "Assessment profile code (requires --profiles)")
	cmd.StringVar(&otlpEndpoint, "otlp", "", "OTLP gRPC endpoint for trace export (disabled if empty)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the full report as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if clausesPath == "" {
		fmt.Fprintln(stderr, "Error: --clauses is required")
		cmd.Usage()
		return 2
	}

	cfg := config.Load()
	observability.SetupLogging(cfg.LogLevel)

	ctx := context.Background()

	if otlpEndpoint != "" {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = otlpEndpoint
		obsCfg.Insecure = true
		provider, err := observability.New(ctx, obsCfg)
		if err != nil {
			fmt.Fprintf(stderr, "Error initializing tracing: %v\n", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = provider.Shutdown(shutdownCtx)
		}()
	}

	clauses, err := readClauses(clausesPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading clauses: %v\n", err)
		return 1
	}

	chk, err := checker.NewFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error initializing checker: %v\n", err)
		return 1
	}

	if documentID == "" {
		documentID = clausesPath
	}

	var report compliance.Report
	if profileCode != "" {
		profile, perr := config.LoadProfile(profilesDir, profileCode)
		if perr != nil {
			fmt.Fprintf(stderr, "Error loading profile: %v\n", perr)
			return 1
		}
		report, err = chk.CheckWithProfile(ctx, clauses, profile, documentID)
	} else {
		frameworks := strings.Split(frameworksCSV, ",")
		report, err = chk.CheckCompliance(ctx, clauses, frameworks, documentID)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	printReport(stdout, report)
	return 0
}

func readClauses(path string) ([]compliance.Clause, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var clauses []compliance.Clause
	if err := json.Unmarshal(data, &clauses); err != nil {
		return nil, fmt.Errorf("parse clauses: %w", err)
	}
	return clauses, nil
}

func printReport(w io.Writer, report compliance.Report) {
	fmt.Fprintf(w, "%sCompliance Report%s %s\n", ColorBold+ColorBlue, ColorReset, report.ReportID)
	fmt.Fprintf(w, "  Document:   %s\n", report.DocumentID)
	fmt.Fprintf(w, "  Frameworks: %s\n", joinFrameworks(report.FrameworksChecked))
	fmt.Fprintf(w, "  Score:      %s%.2f%s / 100\n", scoreColor(report.OverallScore), report.OverallScore, ColorReset)
	fmt.Fprintln(w, "")

	s := report.Summary
	fmt.Fprintf(w, "  Assessed %d clause results: %d compliant, %d partial, %d non-compliant\n",
		s.TotalClauses, s.CompliantClauses, s.PartialClauses, s.NonCompliantClauses)
	fmt.Fprintf(w, "  Risk: %d high, %d medium, %d low\n",
		s.HighRiskCount, s.MediumRiskCount, s.LowRiskCount)

	if len(report.HighRiskItems) > 0 {
		fmt.Fprintln(w, "")
		printSection(w, "HIGH RISK")
		for _, r := range report.HighRiskItems {
			fmt.Fprintf(w, "  [%s] clause %s (%s)\n", r.Framework, r.ClauseID, r.Status)
			for _, issue := range r.Issues {
				fmt.Fprintf(w, "    - %s\n", issue)
			}
		}
	}

	if len(report.MissingRequirements) > 0 {
		fmt.Fprintln(w, "")
		printSection(w, "MISSING MANDATORY REQUIREMENTS")
		for _, req := range report.MissingRequirements {
			fmt.Fprintf(w, "  [%s] %s (%s): %s\n", req.Framework, req.ID, req.ArticleReference, req.Description)
		}
	}
}

func joinFrameworks(fws []compliance.Framework) string {
	parts := make([]string, len(fws))
	for i, fw := range fws {
		parts[i] = string(fw)
	}
	return strings.Join(parts, ", ")
}

func scoreColor(score float64) string {
	switch {
	case score >= 80:
		return ColorGreen
	case score >= 50:
		return ColorCyan
	default:
		return ColorBold
	}
}
