// Package assess combines semantic requirement matching with rule-based
// evaluation to produce per-clause compliance results.
package assess

import (
	"context"
	"log/slog"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
	"github.com/praxia-labs/clausecheck/pkg/knowledge"
	"github.com/praxia-labs/clausecheck/pkg/rules"
)

// matchTopK caps how many requirement matches feed a single assessment.
const matchTopK = 3

// Matcher finds the requirements most similar to a clause. Satisfied by
// *knowledge.Base.
type Matcher interface {
	MatchClauseToRequirements(ctx context.Context, clause compliance.Clause, fw compliance.Framework, topK int) ([]knowledge.Match, error)
}

// Assessor evaluates clauses against regulatory frameworks.
type Assessor struct {
	matcher Matcher
	engine  *rules.Engine
	logger  *slog.Logger
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithRuleEngine overrides the default rule engine.
func WithRuleEngine(e *rules.Engine) Option {
	return func(a *Assessor) { a.engine = e }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assessor) { a.logger = l }
}

// New creates an assessor over the given matcher.
func New(matcher Matcher, opts ...Option) *Assessor {
	a := &Assessor{
		matcher: matcher,
		engine:  rules.NewEngine(),
		logger:  slog.Default().With("component", "assess"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AssessClause assesses a single clause against one framework. The best
// match drives the rule evaluation; all matches are recorded on the
// result. A clause with no matching requirements is Not Applicable at
// low risk. A matching failure is contained into a degraded Not
// Applicable result at medium risk rather than propagated.
func (a *Assessor) AssessClause(ctx context.Context, clause compliance.Clause, fw compliance.Framework) compliance.Result {
	result := compliance.Result{
		ClauseID:   clause.ID,
		ClauseText: clause.Text,
		ClauseType: clause.Type,
		Framework:  fw,
	}

	matches, err := a.matcher.MatchClauseToRequirements(ctx, clause, fw, matchTopK)
	if err != nil {
		a.logger.Error("clause assessment failed",
			"clause", clause.ID, "framework", string(fw), "error", err)
		result.Status = compliance.StatusNotApplicable
		result.Risk = compliance.RiskMedium
		result.Issues = []string{"Error during assessment: " + err.Error()}
		result.Degraded = true
		return result
	}

	if len(matches) == 0 {
		a.logger.Warn("no matching requirements for clause",
			"clause", clause.ID, "framework", string(fw))
		result.Status = compliance.StatusNotApplicable
		result.Risk = compliance.RiskLow
		result.Issues = []string{"No matching requirements found for this clause type"}
		return result
	}

	best := matches[0]
	ev := a.engine.Evaluate(clause, best.Requirement, best.Similarity)

	result.Status = ev.Status
	result.Risk = ev.Risk
	result.Issues = ev.Issues
	result.Confidence = best.Similarity
	result.Matched = make([]compliance.Requirement, len(matches))
	for i, m := range matches {
		result.Matched[i] = m.Requirement
	}

	a.logger.Debug("clause assessed",
		"clause", clause.ID,
		"framework", string(fw),
		"status", string(result.Status),
		"risk", string(result.Risk),
		"confidence", result.Confidence)
	return result
}

// AssessClauses assesses each clause against one framework, preserving
// input order.
func (a *Assessor) AssessClauses(ctx context.Context, clauses []compliance.Clause, fw compliance.Framework) []compliance.Result {
	a.logger.Info("assessing clauses", "count", len(clauses), "framework", string(fw))

	results := make([]compliance.Result, 0, len(clauses))
	for _, clause := range clauses {
		results = append(results, a.AssessClause(ctx, clause, fw))
	}
	return results
}

// AssessAgainstFrameworks assesses one clause against several
// frameworks, one result per framework in the given order.
func (a *Assessor) AssessAgainstFrameworks(ctx context.Context, clause compliance.Clause, fws []compliance.Framework) []compliance.Result {
	results := make([]compliance.Result, 0, len(fws))
	for _, fw := range fws {
		results = append(results, a.AssessClause(ctx, clause, fw))
	}
	return results
}

// OverallRisk is the highest risk across results for the same clause.
// No results means low risk.
func OverallRisk(results []compliance.Result) compliance.Risk {
	overall := compliance.RiskLow
	for _, r := range results {
		if r.Risk.MoreSevere(overall) {
			overall = r.Risk
		}
	}
	return overall
}

// FilterByStatus keeps the results with the given status.
func FilterByStatus(results []compliance.Result, status compliance.Status) []compliance.Result {
	var out []compliance.Result
	for _, r := range results {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// FilterByRisk keeps the results with the given risk level.
func FilterByRisk(results []compliance.Result, risk compliance.Risk) []compliance.Result {
	var out []compliance.Result
	for _, r := range results {
		if r.Risk == risk {
			out = append(out, r)
		}
	}
	return out
}

// HighRiskResults keeps the high-risk results.
func HighRiskResults(results []compliance.Result) []compliance.Result {
	return FilterByRisk(results, compliance.RiskHigh)
}

// NonCompliantResults keeps the non-compliant results.
func NonCompliantResults(results []compliance.Result) []compliance.Result {
	return FilterByStatus(results, compliance.StatusNonCompliant)
}
