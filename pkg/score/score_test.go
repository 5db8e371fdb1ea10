package score

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

func result(id string, status compliance.Status, risk compliance.Risk, confidence float64) compliance.Result {
	return compliance.Result{
		ClauseID:   id,
		Framework:  compliance.FrameworkGDPR,
		Status:     status,
		Risk:       risk,
		Confidence: confidence,
	}
}

func mandatoryReq(id string, fw compliance.Framework) compliance.Requirement {
	return compliance.Requirement{ID: id, Framework: fw, Mandatory: true}
}

func TestOverallEmptyInputs(t *testing.T) {
	require.Equal(t, 0.0, Overall(nil, nil))
}

func TestOverallAllCompliant(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusCompliant, compliance.RiskLow, 0.95),
	}
	require.Equal(t, 100.0, Overall(results, nil))
}

func TestOverallMixedStatuses(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("c3", compliance.StatusNonCompliant, compliance.RiskHigh, 0.6),
		result("c4", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
	}
	require.Equal(t, 37.5, Overall(results, nil))
}

func TestOverallExcludesNotApplicable(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusNotApplicable, compliance.RiskLow, 0),
	}
	require.Equal(t, 100.0, Overall(results, nil))
}

func TestOverallRounding(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
		result("c3", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
	}
	require.Equal(t, 33.33, Overall(results, nil))
}

func TestOverallMissingPenalty(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
	}

	missing := []compliance.Requirement{
		mandatoryReq("r1", compliance.FrameworkGDPR),
		mandatoryReq("r2", compliance.FrameworkGDPR),
		mandatoryReq("r3", compliance.FrameworkGDPR),
	}
	require.Equal(t, 70.0, Overall(results, missing))
}

func TestOverallPenaltyCapAtFifty(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
	}

	five := make([]compliance.Requirement, 5)
	six := make([]compliance.Requirement, 6)
	for i := range six {
		six[i] = mandatoryReq("r", compliance.FrameworkGDPR)
		if i < 5 {
			five[i] = six[i]
		}
	}

	require.Equal(t, 50.0, Overall(results, five))
	require.Equal(t, 50.0, Overall(results, six), "penalty is capped at 50 points")
}

func TestOverallNonMandatoryMissingNoPenalty(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
	}
	missing := []compliance.Requirement{
		{ID: "r1", Framework: compliance.FrameworkGDPR, Mandatory: false},
	}
	require.Equal(t, 100.0, Overall(results, missing))
}

func TestOverallScoreFloorsAtZero(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("c2", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
	}
	missing := make([]compliance.Requirement, 5)
	for i := range missing {
		missing[i] = mandatoryReq("r", compliance.FrameworkGDPR)
	}
	// Base 25 minus capped penalty 50 floors at zero.
	require.Equal(t, 0.0, Overall(results, missing))
}

func TestOverallOnlyMissingRequirements(t *testing.T) {
	missing := []compliance.Requirement{mandatoryReq("r1", compliance.FrameworkGDPR)}
	require.Equal(t, 0.0, Overall(nil, missing))
}

func TestForFrameworkFilters(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		{ClauseID: "c2", Framework: compliance.FrameworkHIPAA, Status: compliance.StatusNonCompliant, Risk: compliance.RiskHigh},
	}
	missing := []compliance.Requirement{mandatoryReq("r1", compliance.FrameworkHIPAA)}

	require.Equal(t, 100.0, ForFramework(results, compliance.FrameworkGDPR, missing))
	require.Equal(t, 0.0, ForFramework(results, compliance.FrameworkHIPAA, missing))
}

func TestSummarize(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("c3", compliance.StatusNonCompliant, compliance.RiskHigh, 0.6),
		result("c4", compliance.StatusNotApplicable, compliance.RiskLow, 0),
	}

	s := Summarize(results)

	require.Equal(t, 4, s.TotalClauses)
	require.Equal(t, 1, s.CompliantClauses)
	require.Equal(t, 1, s.PartialClauses)
	require.Equal(t, 1, s.NonCompliantClauses)
	require.Equal(t, 1, s.HighRiskCount)
	require.Equal(t, 1, s.MediumRiskCount)
	require.Equal(t, 2, s.LowRiskCount)
}

func TestHighRiskItemsSortedByConfidence(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusNonCompliant, compliance.RiskHigh, 0.7),
		result("c2", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c3", compliance.StatusNonCompliant, compliance.RiskHigh, 0.4),
	}

	items := HighRiskItems(results)

	require.Len(t, items, 2)
	require.Equal(t, "c3", items[0].ClauseID, "lowest confidence first")
	require.Equal(t, "c1", items[1].ClauseID)
}

func TestPriorityIssuesOrdering(t *testing.T) {
	results := []compliance.Result{
		result("low", compliance.StatusCompliant, compliance.RiskLow, 0.95),
		result("partial", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("worst", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
		result("shaky", compliance.StatusNonCompliant, compliance.RiskHigh, 0.3),
	}

	issues := PriorityIssues(results, 10)

	require.Equal(t, "shaky", issues[0].ClauseID, "lower confidence wins within same risk and status")
	require.Equal(t, "worst", issues[1].ClauseID)
	require.Equal(t, "partial", issues[2].ClauseID)
	require.Equal(t, "low", issues[3].ClauseID)
}

func TestPriorityIssuesTopN(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
		result("c2", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("c3", compliance.StatusCompliant, compliance.RiskLow, 0.9),
	}

	issues := PriorityIssues(results, 2)
	require.Len(t, issues, 2)
	require.Equal(t, "c1", issues[0].ClauseID)
}

func TestCompliancePercentage(t *testing.T) {
	require.Equal(t, 0.0, CompliancePercentage(nil))

	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		result("c3", compliance.StatusNonCompliant, compliance.RiskHigh, 0.6),
	}
	require.Equal(t, 33.33, CompliancePercentage(results))
}

func TestFrameworkBreakdown(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusPartial, compliance.RiskMedium, 0.8),
		{ClauseID: "c3", Framework: compliance.FrameworkHIPAA, Status: compliance.StatusNonCompliant, Risk: compliance.RiskHigh},
	}
	missing := []compliance.Requirement{mandatoryReq("r1", compliance.FrameworkHIPAA)}

	breakdown := FrameworkBreakdown(results, missing)

	require.Len(t, breakdown, 2)

	gdpr := breakdown[compliance.FrameworkGDPR]
	require.Equal(t, 1, gdpr.Compliant)
	require.Equal(t, 1, gdpr.Partial)
	require.Equal(t, 0, gdpr.MissingMandatory)
	require.Equal(t, 75.0, gdpr.Score)

	hipaa := breakdown[compliance.FrameworkHIPAA]
	require.Equal(t, 1, hipaa.NonCompliant)
	require.Equal(t, 1, hipaa.HighRisk)
	require.Equal(t, 1, hipaa.MissingMandatory)
	require.Equal(t, 0.0, hipaa.Score)
}

func TestBuildReport(t *testing.T) {
	results := []compliance.Result{
		result("c1", compliance.StatusCompliant, compliance.RiskLow, 0.9),
		result("c2", compliance.StatusNonCompliant, compliance.RiskHigh, 0.5),
	}
	missing := []compliance.Requirement{mandatoryReq("r1", compliance.FrameworkGDPR)}
	checked := []compliance.Framework{compliance.FrameworkGDPR}

	report := BuildReport("doc-1", checked, results, missing)

	require.NotEmpty(t, report.ReportID)
	require.Equal(t, "doc-1", report.DocumentID)
	require.Equal(t, checked, report.FrameworksChecked)
	require.Equal(t, 40.0, report.OverallScore)
	require.Len(t, report.ClauseResults, 2)
	require.Len(t, report.HighRiskItems, 1)
	require.Equal(t, missing, report.MissingRequirements)
	require.Equal(t, 2, report.Summary.TotalClauses)
	require.False(t, report.GeneratedAt.IsZero())
	require.False(t, report.Degraded())
}

func TestBuildReportDistinctIDs(t *testing.T) {
	a := BuildReport("doc-1", nil, nil, nil)
	b := BuildReport("doc-1", nil, nil, nil)
	require.NotEqual(t, a.ReportID, b.ReportID)
	require.True(t, a.Degraded())
}
