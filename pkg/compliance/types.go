// Package compliance defines the core data model for regulatory
// compliance assessment of contract clauses.
package compliance

import (
	"strings"
	"time"
)

// ── Enumerations ──────────────────────────────────────────────

// Framework identifies a supported regulatory framework.
type Framework string

const (
	FrameworkGDPR  Framework = "GDPR"
	FrameworkHIPAA Framework = "HIPAA"
	FrameworkCCPA  Framework = "CCPA"
	FrameworkSOX   Framework = "SOX"
)

// SupportedFrameworks lists every framework the engine ships a catalog for.
func SupportedFrameworks() []Framework {
	return []Framework{FrameworkGDPR, FrameworkHIPAA, FrameworkCCPA, FrameworkSOX}
}

// ParseFramework normalizes a framework token (case-insensitive, padded
// whitespace tolerated). The second return is false for unknown tokens.
func ParseFramework(s string) (Framework, bool) {
	switch Framework(strings.ToUpper(strings.TrimSpace(s))) {
	case FrameworkGDPR:
		return FrameworkGDPR, true
	case FrameworkHIPAA:
		return FrameworkHIPAA, true
	case FrameworkCCPA:
		return FrameworkCCPA, true
	case FrameworkSOX:
		return FrameworkSOX, true
	default:
		return "", false
	}
}

// Status is the compliance outcome for one clause against one requirement.
type Status string

const (
	StatusCompliant     Status = "Compliant"
	StatusPartial       Status = "Partial"
	StatusNonCompliant  Status = "Non-Compliant"
	StatusNotApplicable Status = "Not Applicable"
)

// Risk is the severity assigned alongside a compliance status.
type Risk string

const (
	RiskHigh   Risk = "High"
	RiskMedium Risk = "Medium"
	RiskLow    Risk = "Low"
)

// riskRank orders risk levels for comparisons; higher is more severe.
func riskRank(r Risk) int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// MoreSevere reports whether r outranks other.
func (r Risk) MoreSevere(other Risk) bool {
	return riskRank(r) > riskRank(other)
}

// statusSeverity orders statuses by urgency for priority sorting.
func statusSeverity(s Status) int {
	switch s {
	case StatusNonCompliant:
		return 3
	case StatusPartial:
		return 2
	case StatusCompliant:
		return 1
	default: // Not Applicable
		return 0
	}
}

// ── Catalog entries ───────────────────────────────────────────

// Requirement is a single obligation from a regulatory framework catalog.
// Requirements are immutable after catalog load; embeddings live in the
// knowledge-base cache, keyed by ID, never on the requirement itself.
type Requirement struct {
	ID                string    `json:"requirement_id" yaml:"requirement_id"`
	Framework         Framework `json:"framework" yaml:"framework"`
	ArticleReference  string    `json:"article_reference" yaml:"article_reference"`
	ClauseType        string    `json:"clause_type" yaml:"clause_type"`
	Description       string    `json:"description" yaml:"description"`
	Mandatory         bool      `json:"mandatory" yaml:"mandatory"`
	Keywords          []string  `json:"keywords" yaml:"keywords"`
	MandatoryElements []string  `json:"mandatory_elements" yaml:"mandatory_elements"`
	RiskLevel         Risk      `json:"risk_level" yaml:"risk_level"`
}

// ── External input ────────────────────────────────────────────

// Clause is an analyzed contract clause supplied by the upstream
// classifier/embedder. The engine treats type and embedding as opaque.
type Clause struct {
	ID         string    `json:"clause_id"`
	Text       string    `json:"clause_text"`
	Type       string    `json:"clause_type"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Confidence float64   `json:"confidence_score"`
}

// ── Assessment output ─────────────────────────────────────────

// Result is the compliance assessment of one clause against one framework.
// Created by the assessor and immutable afterward.
type Result struct {
	ClauseID   string        `json:"clause_id"`
	ClauseText string        `json:"clause_text"`
	ClauseType string        `json:"clause_type"`
	Framework  Framework     `json:"framework"`
	Status     Status        `json:"compliance_status"`
	Risk       Risk          `json:"risk_level"`
	Matched    []Requirement `json:"matched_requirements"`
	Confidence float64       `json:"confidence"`
	Issues     []string      `json:"issues"`
	// Degraded marks results substituted after a per-item assessment
	// failure, so callers can tell them apart from genuine Not Applicable.
	Degraded bool `json:"degraded,omitempty"`
}

// Severity returns (statusSeverity, riskRank) for priority ordering.
func (r Result) Severity() (int, int) {
	return statusSeverity(r.Status), riskRank(r.Risk)
}

// Summary tallies assessment results by status and risk.
type Summary struct {
	TotalClauses        int `json:"total_clauses"`
	CompliantClauses    int `json:"compliant_clauses"`
	NonCompliantClauses int `json:"non_compliant_clauses"`
	PartialClauses      int `json:"partial_clauses"`
	HighRiskCount       int `json:"high_risk_count"`
	MediumRiskCount     int `json:"medium_risk_count"`
	LowRiskCount        int `json:"low_risk_count"`
}

// Report is the complete compliance assessment for one document.
// A report is a value object: nothing in it is mutated after creation.
type Report struct {
	ReportID            string        `json:"report_id"`
	DocumentID          string        `json:"document_id"`
	FrameworksChecked   []Framework   `json:"frameworks_checked"`
	OverallScore        float64       `json:"overall_score"` // 0-100
	ClauseResults       []Result      `json:"clause_results"`
	MissingRequirements []Requirement `json:"missing_requirements"`
	HighRiskItems       []Result      `json:"high_risk_items"`
	Summary             Summary       `json:"summary"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// Degraded reports whether the checker substituted a zero report after a
// contained pipeline failure (or was given nothing to assess).
func (r *Report) Degraded() bool {
	return r.OverallScore == 0 && len(r.ClauseResults) == 0
}
