package cmd

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/ravensec/xssentinel/lib"
	"github.com/ravensec/xssentinel/pkg/model"
)

// resultView adapts model.TestResult to lib.Formattable, the same
// String/Pretty/TableHeaders/TableRow contract the teacher's db.Issue
// implements for FormatOutput.
type resultView model.TestResult

var (
	severityColors = map[string]func(a ...interface{}) string{
		"high":   color.New(color.FgRed, color.Bold).SprintFunc(),
		"medium": color.New(color.FgYellow).SprintFunc(),
		"low":    color.New(color.FgGreen).SprintFunc(),
		"none":   color.New(color.FgWhite).SprintFunc(),
	}
)

func severityLabel(severity string) string {
	paint, ok := severityColors[severity]
	if !ok {
		return severity
	}
	return paint(severity)
}

func (r resultView) String() string {
	return fmt.Sprintf(
		"URL: %s\nPayload: %s\nReflected: %t\nExecuted: %t\nSeverity: %s\nConfidence: %.2f\nMethods: %v\nFromCache: %t",
		r.URL, r.Payload, r.Reflected, r.Executed, r.Severity, r.Confidence, r.DetectionMethods, r.FromCache,
	)
}

func (r resultView) Pretty() string {
	return fmt.Sprintf(
		"%sURL:%s %s\n%sPayload:%s %s\n%sReflected:%s %t\n%sExecuted:%s %t\n%sSeverity:%s %s\n%sConfidence:%s %.2f\n%sMethods:%s %v\n%sFromCache:%s %t\n",
		lib.Blue, lib.ResetColor, r.URL,
		lib.Blue, lib.ResetColor, r.Payload,
		lib.Blue, lib.ResetColor, r.Reflected,
		lib.Blue, lib.ResetColor, r.Executed,
		lib.Blue, lib.ResetColor, severityLabel(r.Severity),
		lib.Blue, lib.ResetColor, r.Confidence,
		lib.Blue, lib.ResetColor, r.DetectionMethods,
		lib.Blue, lib.ResetColor, r.FromCache,
	)
}

func (r resultView) TableHeaders() []string {
	return []string{"Payload", "Reflected", "Executed", "Severity", "Confidence", "Cache"}
}

func (r resultView) TableRow() []string {
	return []string{
		r.Payload,
		fmt.Sprintf("%t", r.Reflected),
		fmt.Sprintf("%t", r.Executed),
		r.Severity,
		fmt.Sprintf("%.2f", r.Confidence),
		fmt.Sprintf("%t", r.FromCache),
	}
}

func resultViews(results []model.TestResult) []resultView {
	views := make([]resultView, len(results))
	for i, r := range results {
		views[i] = resultView(r)
	}
	return views
}
