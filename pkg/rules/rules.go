// Package rules evaluates clauses against framework-specific compliance
// rules for GDPR, HIPAA, CCPA, and SOX.
package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/praxia-labs/clausecheck/pkg/compliance"
)

var (
	noticePeriodRe = regexp.MustCompile(`\d+\s*(day|week|month)`)
	hoursRe        = regexp.MustCompile(`\d+\s*hour`)
	daysRe         = regexp.MustCompile(`\d+\s*(day|calendar day)`)
)

// stopWords are dropped when deriving search keywords from a mandatory
// element description.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {},
	"to": {}, "in": {}, "for": {}, "on": {}, "with": {},
}

// Evaluation is the outcome of checking one clause against one
// requirement.
type Evaluation struct {
	Status compliance.Status
	Risk   compliance.Risk
	Issues []string
}

// Engine applies the framework rule sets. It is stateless and safe for
// concurrent use.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a rule engine.
func NewEngine() *Engine {
	return &Engine{logger: slog.Default().With("component", "rules")}
}

// Evaluate routes the clause to the requirement's framework rule set.
// An unknown framework yields Not-Applicable at low risk.
func (e *Engine) Evaluate(clause compliance.Clause, req compliance.Requirement, similarity float64) Evaluation {
	switch req.Framework {
	case compliance.FrameworkGDPR:
		return e.evaluateGDPR(clause, req, similarity)
	case compliance.FrameworkHIPAA:
		return e.evaluateHIPAA(clause, req, similarity)
	case compliance.FrameworkCCPA, compliance.FrameworkSOX:
		return e.evaluateThreeTier(clause, req, similarity)
	default:
		e.logger.Warn("unknown framework", "framework", string(req.Framework))
		return Evaluation{Status: compliance.StatusNotApplicable, Risk: compliance.RiskLow}
	}
}

// evaluateGDPR applies the four-tier GDPR rules plus clause-type probes.
func (e *Engine) evaluateGDPR(clause compliance.Clause, req compliance.Requirement, similarity float64) Evaluation {
	text := strings.ToLower(clause.Text)
	missing := MissingMandatoryElements(clause.Text, req.MandatoryElements)
	ev := fourTier(req, similarity, missing)

	switch req.ClauseType {
	case "Data Processing":
		ev.Issues = append(ev.Issues, checkGDPRDataProcessing(text)...)
	case "Sub-processor Authorization":
		ev.Issues = append(ev.Issues, checkGDPRSubprocessor(text)...)
	case "Data Subject Rights":
		ev.Issues = append(ev.Issues, checkGDPRDataSubjectRights(text)...)
	case "Breach Notification":
		ev.Issues = append(ev.Issues, checkGDPRBreachNotification(text)...)
	}

	return demoteOnIssues(ev)
}

// evaluateHIPAA applies the four-tier HIPAA rules plus clause-type probes.
func (e *Engine) evaluateHIPAA(clause compliance.Clause, req compliance.Requirement, similarity float64) Evaluation {
	text := strings.ToLower(clause.Text)
	missing := MissingMandatoryElements(clause.Text, req.MandatoryElements)
	ev := fourTier(req, similarity, missing)

	switch req.ClauseType {
	case "Security Safeguards":
		ev.Issues = append(ev.Issues, checkHIPAASafeguards(text)...)
	case "Breach Notification":
		ev.Issues = append(ev.Issues, checkHIPAABreachNotification(text)...)
	case "Permitted Uses and Disclosures":
		ev.Issues = append(ev.Issues, checkHIPAAPermittedUses(text)...)
	}

	return demoteOnIssues(ev)
}

// evaluateThreeTier applies the simpler CCPA and SOX rules, which have
// no clause-type probes.
func (e *Engine) evaluateThreeTier(clause compliance.Clause, req compliance.Requirement, similarity float64) Evaluation {
	missing := MissingMandatoryElements(clause.Text, req.MandatoryElements)

	switch {
	case similarity >= 0.85 && len(missing) == 0:
		return Evaluation{Status: compliance.StatusCompliant, Risk: compliance.RiskLow}
	case similarity >= 0.75:
		ev := Evaluation{Status: compliance.StatusPartial, Risk: compliance.RiskMedium}
		if len(missing) > 0 {
			ev.Issues = append(ev.Issues, "Missing elements: "+strings.Join(missing, ", "))
		}
		return ev
	default:
		return Evaluation{
			Status: compliance.StatusNonCompliant,
			Risk:   compliance.RiskHigh,
			Issues: []string{"Clause does not adequately address requirement: " + req.Description},
		}
	}
}

// fourTier is the shared GDPR/HIPAA status ladder. High similarity with
// every mandatory element present is compliant; good similarity is
// partial, with the issue wording depending on how many elements are
// missing; anything below threshold is non-compliant.
func fourTier(req compliance.Requirement, similarity float64, missing []string) Evaluation {
	switch {
	case similarity >= 0.85 && len(missing) == 0:
		return Evaluation{Status: compliance.StatusCompliant, Risk: compliance.RiskLow}

	case similarity >= 0.75 && float64(len(missing)) <= float64(len(req.MandatoryElements))*0.3:
		ev := Evaluation{Status: compliance.StatusPartial, Risk: compliance.RiskMedium}
		if len(missing) > 0 {
			ev.Issues = append(ev.Issues, "Missing or unclear elements: "+strings.Join(missing, ", "))
		}
		return ev

	case similarity >= 0.75:
		return Evaluation{
			Status: compliance.StatusPartial,
			Risk:   compliance.RiskMedium,
			Issues: []string{"Missing mandatory elements: " + strings.Join(missing, ", ")},
		}

	default:
		ev := Evaluation{
			Status: compliance.StatusNonCompliant,
			Risk:   compliance.RiskHigh,
			Issues: []string{"Clause does not adequately address requirement: " + req.Description},
		}
		if len(missing) > 0 {
			ev.Issues = append(ev.Issues, "Missing mandatory elements: "+strings.Join(missing, ", "))
		}
		return ev
	}
}

// demoteOnIssues downgrades a compliant result to partial when the
// clause-type probes raised any issue.
func demoteOnIssues(ev Evaluation) Evaluation {
	if len(ev.Issues) > 0 && ev.Status == compliance.StatusCompliant {
		ev.Status = compliance.StatusPartial
		ev.Risk = compliance.RiskMedium
	}
	return ev
}

// MissingMandatoryElements reports which mandatory elements have no
// keyword present in the clause text.
func MissingMandatoryElements(clauseText string, elements []string) []string {
	text := strings.ToLower(clauseText)
	var missing []string
	for _, element := range elements {
		if !anyKeywordPresent(text, elementKeywords(element)) {
			missing = append(missing, element)
		}
	}
	return missing
}

// elementKeywords derives search keywords from a mandatory element
// description: the lowercased significant words, punctuation stripped,
// plus the full phrase.
func elementKeywords(element string) []string {
	lower := strings.ToLower(element)
	var keywords []string
	for _, word := range strings.Fields(lower) {
		if _, skip := stopWords[word]; skip {
			continue
		}
		keywords = append(keywords, strings.Trim(word, ".,;:()[]{}"))
	}
	return append(keywords, lower)
}

func anyKeywordPresent(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// checkGDPRDataProcessing verifies the Article 28(3) processing terms a
// data processing clause must reference.
func checkGDPRDataProcessing(text string) []string {
	required := []struct {
		term     string
		keywords []string
	}{
		{"instructions", []string{"instruction", "instruct", "directed"}},
		{"confidentiality", []string{"confidential", "confidentiality", "secret"}},
		{"security", []string{"security", "secure", "safeguard", "protect"}},
		{"controller", []string{"controller", "data controller"}},
	}

	var issues []string
	for _, r := range required {
		if !anyKeywordPresent(text, r.keywords) {
			issues = append(issues, fmt.Sprintf("Missing reference to %s", r.term))
		}
	}
	return issues
}

func checkGDPRSubprocessor(text string) []string {
	var issues []string

	if !strings.Contains(text, "authorization") && !strings.Contains(text, "authorisation") {
		issues = append(issues, "Missing explicit authorization requirement")
	}
	if !strings.Contains(text, "notification") && !strings.Contains(text, "notify") {
		issues = append(issues, "Missing notification requirement")
	}
	if !noticePeriodRe.MatchString(text) {
		if !strings.Contains(text, "prior") && !strings.Contains(text, "advance") {
			issues = append(issues, "Missing notification timeframe")
		}
	}
	return issues
}

func checkGDPRDataSubjectRights(text string) []string {
	var issues []string

	rights := []string{"access", "rectification", "erasure", "deletion", "portability"}
	found := 0
	for _, right := range rights {
		if strings.Contains(text, right) {
			found++
		}
	}
	if found < 2 {
		issues = append(issues, "Insufficient coverage of data subject rights")
	}
	if !strings.Contains(text, "assist") && !strings.Contains(text, "support") {
		issues = append(issues, "Missing assistance obligation")
	}
	return issues
}

// checkGDPRBreachNotification looks for the Article 33 breach duty and
// the 72-hour window.
func checkGDPRBreachNotification(text string) []string {
	var issues []string

	if !strings.Contains(text, "breach") {
		issues = append(issues, "Missing breach reference")
	}
	if !strings.Contains(text, "notification") && !strings.Contains(text, "notify") {
		issues = append(issues, "Missing notification obligation")
	}
	if !hoursRe.MatchString(text) {
		issues = append(issues, "Missing or unclear notification timeframe")
	}
	return issues
}

// checkHIPAASafeguards requires all three Security Rule safeguard
// categories to be referenced.
func checkHIPAASafeguards(text string) []string {
	categories := []struct {
		name     string
		keywords []string
	}{
		{"administrative", []string{"administrative", "management", "policy"}},
		{"physical", []string{"physical", "facility", "access control"}},
		{"technical", []string{"technical", "encryption", "authentication"}},
	}

	var issues []string
	for _, c := range categories {
		if !anyKeywordPresent(text, c.keywords) {
			issues = append(issues, fmt.Sprintf("Missing %s safeguards reference", c.name))
		}
	}
	return issues
}

// checkHIPAABreachNotification looks for the breach duty and the 60-day
// window.
func checkHIPAABreachNotification(text string) []string {
	var issues []string

	if !strings.Contains(text, "breach") {
		issues = append(issues, "Missing breach reference")
	}
	if !strings.Contains(text, "notification") && !strings.Contains(text, "notify") {
		issues = append(issues, "Missing notification obligation")
	}
	if !daysRe.MatchString(text) {
		issues = append(issues, "Missing or unclear notification timeframe")
	}
	return issues
}

func checkHIPAAPermittedUses(text string) []string {
	var issues []string

	if !strings.Contains(text, "permitted") && !strings.Contains(text, "authorized") {
		issues = append(issues, "Missing permitted uses specification")
	}
	if !strings.Contains(text, "disclosure") && !strings.Contains(text, "disclose") {
		issues = append(issues, "Missing disclosure terms")
	}
	if !strings.Contains(text, "minimum necessary") {
		issues = append(issues, "Missing minimum necessary standard")
	}
	return issues
}
