package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunNoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "USAGE")
}

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "help"}, &out, &errOut)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "clausecheck")
	require.Contains(t, out.String(), "check")
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "bogus"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "Unknown command: bogus")
}

func TestCheckRequiresClauses(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "check"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "--clauses is required")
}

func TestCatalogStats(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "catalog", "stats", "--json"}, &out, &errOut)
	require.Equal(t, 0, code)

	var stats struct {
		TotalRequirements int `json:"total_requirements"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	require.Equal(t, 37, stats.TotalRequirements)
}

func TestCatalogList(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "catalog", "list", "--framework", "gdpr"}, &out, &errOut)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "GDPR_ART28_01")
}

func TestCatalogListUnknownFramework(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "catalog", "list", "--framework", "PCI"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "unknown framework")
}

func TestCatalogListKeyword(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"clausecheck", "catalog", "list", "--framework", "GDPR", "--keyword", "breach"}, &out, &errOut)
	require.Equal(t, 0, code)

	lines := strings.TrimSpace(out.String())
	require.Contains(t, lines, "GDPR_ART33_01")
}
