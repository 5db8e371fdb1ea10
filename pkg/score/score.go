// Package score aggregates per-clause assessment results into overall
// scores, summaries, and compliance reports.
package score

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

// missingPenaltyPerItem and missingPenaltyCap bound the score deduction
// for absent mandatory requirements.
const (
	missingPenaltyPerItem = 10.0
	missingPenaltyCap     = 50.0
)

// Overall computes the 0-100 compliance score. Compliant clauses earn
// full credit, partial clauses half, non-compliant none; Not Applicable
// results are excluded from the denominator. Each missing mandatory
// requirement deducts 10 points, capped at 50, and the score never goes
// below zero. Nothing to assess and nothing missing scores 0.
func Overall(results []compliance.Result, missing []compliance.Requirement) float64 {
	if len(results) == 0 && len(missing) == 0 {
		return 0.0
	}

	var compliant, partial, nonCompliant int
	for _, r := range results {
		switch r.Status {
		case compliance.StatusCompliant:
			compliant++
		case compliance.StatusPartial:
			partial++
		case compliance.StatusNonCompliant:
			nonCompliant++
		}
	}

	base := 0.0
	if assessed := compliant + partial + nonCompliant; assessed > 0 {
		base = (float64(compliant) + 0.5*float64(partial)) / float64(assessed) * 100
	}

	mandatoryMissing := 0
	for _, req := range missing {
		if req.Mandatory {
			mandatoryMissing++
		}
	}
	if mandatoryMissing > 0 {
		penalty := math.Min(float64(mandatoryMissing)*missingPenaltyPerItem, missingPenaltyCap)
		base = math.Max(0, base-penalty)
	}

	return round2(base)
}

// ForFramework computes the score from the subset of results and
// missing requirements belonging to one framework.
func ForFramework(results []compliance.Result, fw compliance.Framework, missing []compliance.Requirement) float64 {
	var fwResults []compliance.Result
	for _, r := range results {
		if r.Framework == fw {
			fwResults = append(fwResults, r)
		}
	}
	var fwMissing []compliance.Requirement
	for _, req := range missing {
		if req.Framework == fw {
			fwMissing = append(fwMissing, req)
		}
	}
	return Overall(fwResults, fwMissing)
}

// Summarize tallies results by status and risk level.
func Summarize(results []compliance.Result) compliance.Summary {
	s := compliance.Summary{TotalClauses: len(results)}
	for _, r := range results {
		switch r.Status {
		case compliance.StatusCompliant:
			s.CompliantClauses++
		case compliance.StatusNonCompliant:
			s.NonCompliantClauses++
		case compliance.StatusPartial:
			s.PartialClauses++
		}
		switch r.Risk {
		case compliance.RiskHigh:
			s.HighRiskCount++
		case compliance.RiskMedium:
			s.MediumRiskCount++
		case compliance.RiskLow:
			s.LowRiskCount++
		}
	}
	return s
}

// HighRiskItems returns the high-risk results ordered by confidence
// ascending, so the least certain items surface first.
func HighRiskItems(results []compliance.Result) []compliance.Result {
	var highRisk []compliance.Result
	for _, r := range results {
		if r.Risk == compliance.RiskHigh {
			highRisk = append(highRisk, r)
		}
	}
	sort.SliceStable(highRisk, func(i, j int) bool {
		return highRisk[i].Confidence < highRisk[j].Confidence
	})
	return highRisk
}

// PriorityIssues returns the topN results most in need of attention:
// highest risk first, then worst status, then lowest confidence. Input
// order breaks remaining ties.
func PriorityIssues(results []compliance.Result, topN int) []compliance.Result {
	sorted := make([]compliance.Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		si, ri := sorted[i].Severity()
		sj, rj := sorted[j].Severity()
		if ri != rj {
			return ri > rj
		}
		if si != sj {
			return si > sj
		}
		return sorted[i].Confidence < sorted[j].Confidence
	})

	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

// CompliancePercentage is the share of fully compliant results, 0-100.
func CompliancePercentage(results []compliance.Result) float64 {
	if len(results) == 0 {
		return 0.0
	}
	compliant := 0
	for _, r := range results {
		if r.Status == compliance.StatusCompliant {
			compliant++
		}
	}
	return round2(float64(compliant) / float64(len(results)) * 100)
}

// Breakdown carries per-framework statistics.
type Breakdown struct {
	Score            float64 `json:"score"`
	Compliant        int     `json:"compliant"`
	Partial          int     `json:"partial"`
	NonCompliant     int     `json:"non_compliant"`
	HighRisk         int     `json:"high_risk"`
	MissingMandatory int     `json:"missing_mandatory"`
}

// FrameworkBreakdown groups results and missing requirements by
// framework and scores each group independently.
func FrameworkBreakdown(results []compliance.Result, missing []compliance.Requirement) map[compliance.Framework]Breakdown {
	breakdown := make(map[compliance.Framework]Breakdown)

	for _, r := range results {
		b := breakdown[r.Framework]
		switch r.Status {
		case compliance.StatusCompliant:
			b.Compliant++
		case compliance.StatusPartial:
			b.Partial++
		case compliance.StatusNonCompliant:
			b.NonCompliant++
		}
		if r.Risk == compliance.RiskHigh {
			b.HighRisk++
		}
		breakdown[r.Framework] = b
	}

	for _, req := range missing {
		if req.Mandatory {
			b := breakdown[req.Framework]
			b.MissingMandatory++
			breakdown[req.Framework] = b
		}
	}

	for fw, b := range breakdown {
		b.Score = ForFramework(results, fw, missing)
		breakdown[fw] = b
	}
	return breakdown
}

// BuildReport assembles the full compliance report for a document.
func BuildReport(documentID string, checked []compliance.Framework, results []compliance.Result, missing []compliance.Requirement) compliance.Report {
	report := compliance.Report{
		ReportID:            uuid.NewString(),
		DocumentID:          documentID,
		FrameworksChecked:   checked,
		OverallScore:        Overall(results, missing),
		ClauseResults:       results,
		MissingRequirements: missing,
		HighRiskItems:       HighRiskItems(results),
		Summary:             Summarize(results),
		GeneratedAt:         time.Now().UTC(),
	}

	slog.Default().Info("compliance report generated",
		"component", "score",
		"report_id", report.ReportID,
		"document_id", documentID,
		"score", report.OverallScore,
		"high_risk_items", len(report.HighRiskItems),
		"missing_requirements", len(missing))
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
