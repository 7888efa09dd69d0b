// Package reducer turns a raw TestResult into the severity/confidence pair
// the HTTP-API variant reports, plus a CSP-blocked informational flag.
// Grounded directly on the engine contract's severity table and on
// lib/text.go's ComputeSimilarity (already wired to
// github.com/sergi/go-diff/diffmatchpatch) for the DOM-diff confirmation
// signal.
package reducer

import (
	"github.com/ravensec/xssentinel/lib"
	"github.com/ravensec/xssentinel/pkg/http_utils"
	"github.com/ravensec/xssentinel/pkg/model"
)

// similarityThreshold is the ComputeSimilarity ceiling below which the
// pre/post-submit DOM is considered meaningfully changed, corroborating a
// reflection finding beyond a simple substring match.
const similarityThreshold = 0.98

// Score returns a copy of result with severity and confidence set, using execution
// evidence first, DOM mutation second, plain reflection last, per the
// contract's "confidence is the max across methods" rule.
func Score(result model.TestResult) model.TestResult {
	switch {
	case result.Executed:
		result.Severity = "high"
		result.Confidence = 0.9
	case hasMethod(result.DetectionMethods, "dom-mutation"):
		result.Severity = "medium"
		result.Confidence = 0.8
	case result.Reflected:
		result.Severity = "low"
		result.Confidence = 0.6
	default:
		result.Severity = "none"
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	return result
}

func hasMethod(methods []string, name string) bool {
	for _, m := range methods {
		if m == name {
			return true
		}
	}
	return false
}

// ConfirmByDiff boosts confidence when the pre- and post-submission DOM
// snapshots differ meaningfully, using the same Levenshtein-based
// similarity metric the teacher already computes for response bodies.
func ConfirmByDiff(result model.TestResult, before, after []byte) model.TestResult {
	similarity := lib.ComputeSimilarity(before, after)
	if similarity < similarityThreshold && result.Confidence < 0.7 {
		result.Confidence = 0.7
		if result.Severity == "none" || result.Severity == "" {
			result.Severity = "low"
		}
	}
	return result
}

// ApplyCSP sets result.CSPBlocked from the response's Content-Security-Policy
// header, flagging execution findings a strict policy would actually have
// blocked as informational rather than downgrading their severity — the
// engine contract treats CSP analysis as additive evidence, never a
// suppressor of a positive verdict.
func ApplyCSP(result model.TestResult, cspHeaderValues []string) model.TestResult {
	if len(cspHeaderValues) == 0 {
		return result
	}
	policy := http_utils.ParseCSP(cspHeaderValues[0])
	blocked := policy.BlocksInlineScripts() && policy.BlocksEval()
	result.CSPBlocked = &blocked
	return result
}
