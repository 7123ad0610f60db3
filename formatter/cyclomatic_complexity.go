package formatter

import "fmt"

// SummaryFormatter formats reports about a function result. It also shows
// the cyclomatic complexity of the function.
type SummaryFormatter struct{}

func (f *SummaryFormatter) ReportTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{complexityInfo .Padding .Function .Complexity -}}
{{note .Note}}
`
}

func complexityInfo(padding string, function string, complexity int) string {
	if complexity <= 0 {
		return ""
	}
	info := fmt.Sprintf("Cyclomatic Complexity of %s: %d", function, complexity)
	return lineStyle.Sprintf("%s= ", padding) + fmt.Sprintln(info)
}
