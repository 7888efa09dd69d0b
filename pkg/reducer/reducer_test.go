package reducer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ravensec/xssentinel/pkg/model"
)

func TestScoreExecutedIsHigh(t *testing.T) {
	result := Score(model.TestResult{Executed: true, Reflected: true})
	require.Equal(t, "high", result.Severity)
	require.Equal(t, 0.9, result.Confidence)
}

func TestScoreDomMutationIsMedium(t *testing.T) {
	result := Score(model.TestResult{Reflected: true, DetectionMethods: []string{"dom-mutation"}})
	require.Equal(t, "medium", result.Severity)
	require.Equal(t, 0.8, result.Confidence)
}

func TestScoreReflectedOnlyIsLow(t *testing.T) {
	result := Score(model.TestResult{Reflected: true})
	require.Equal(t, "low", result.Severity)
	require.Equal(t, 0.6, result.Confidence)
}

func TestScoreNoneWhenNothingObserved(t *testing.T) {
	result := Score(model.TestResult{})
	require.Equal(t, "none", result.Severity)
	require.Zero(t, result.Confidence)
}

func TestConfirmByDiffBoostsOnMeaningfulChange(t *testing.T) {
	result := Score(model.TestResult{})
	result = ConfirmByDiff(result, []byte("<div>hello world, nothing here</div>"), []byte("<div><script>alert(1)</script></div>"))
	require.GreaterOrEqual(t, result.Confidence, 0.7)
	require.Equal(t, "low", result.Severity)
}

func TestApplyCSPSetsBlockedFlag(t *testing.T) {
	result := ApplyCSP(model.TestResult{}, []string{"default-src 'self'; script-src 'self'"})
	require.NotNil(t, result.CSPBlocked)
	require.True(t, *result.CSPBlocked)
}
