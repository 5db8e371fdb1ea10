//go:build property
// +build property

// Package score_test contains property-based tests for score bounds and
// monotonicity.
package score_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
	"github.com/praxia-labs/clausecheck/pkg/score"
)

var statuses = []compliance.Status{
	compliance.StatusCompliant,
	compliance.StatusPartial,
	compliance.StatusNonCompliant,
	compliance.StatusNotApplicable,
}

func resultsFrom(statusIdx []int) []compliance.Result {
	results := make([]compliance.Result, len(statusIdx))
	for i, idx := range statusIdx {
		results[i] = compliance.Result{
			ClauseID:  "c",
			Framework: compliance.FrameworkGDPR,
			Status:    statuses[idx%len(statuses)],
		}
	}
	return results
}

func missingFrom(n int) []compliance.Requirement {
	missing := make([]compliance.Requirement, n)
	for i := range missing {
		missing[i] = compliance.Requirement{
			ID:        "r",
			Framework: compliance.FrameworkGDPR,
			Mandatory: true,
		}
	}
	return missing
}

// TestOverallScoreBounds verifies the score stays within 0-100.
// Property: 0 <= Overall(results, missing) <= 100 for any inputs
func TestOverallScoreBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("score is always within [0, 100]", prop.ForAll(
		func(statusIdx []int, missingCount int) bool {
			s := score.Overall(resultsFrom(statusIdx), missingFrom(missingCount))
			return s >= 0 && s <= 100
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// TestMissingRequirementNeverRaisesScore verifies the penalty is monotone.
// Property: Overall(r, m+1 missing) <= Overall(r, m missing)
func TestMissingRequirementNeverRaisesScore(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("adding a missing mandatory requirement never raises the score", prop.ForAll(
		func(statusIdx []int, missingCount int) bool {
			results := resultsFrom(statusIdx)
			if len(results) == 0 {
				return true // Both sides degenerate to the zero score
			}
			before := score.Overall(results, missingFrom(missingCount))
			after := score.Overall(results, missingFrom(missingCount+1))
			return after <= before
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// TestScoreDeterminism verifies scoring is a pure function of its inputs.
func TestScoreDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("scoring the same inputs twice gives the same score", prop.ForAll(
		func(statusIdx []int, missingCount int) bool {
			results := resultsFrom(statusIdx)
			missing := missingFrom(missingCount)
			return score.Overall(results, missing) == score.Overall(results, missing)
		},
		gen.SliceOf(gen.IntRange(0, 3)),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
