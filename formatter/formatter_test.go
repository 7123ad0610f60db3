package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/gnoverse/bitwidth/internal"
	tt "github.com/gnoverse/bitwidth/internal/types"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

var maskSource = &internal.SourceCode{
	Lines: []string{
		"package main",
		"",
		"func mask(x uint8) uint8 {",
		"\treturn x & 0x0f",
		"}",
	},
}

func at(line, column int) token.Position {
	return token.Position{Filename: "test.go", Line: line, Column: column}
}

func TestGenerateFormattedReport(t *testing.T) {
	t.Parallel()
	reports := []tt.Report{
		{
			Kind:       tt.KindSummary,
			Severity:   tt.SeverityInfo,
			Function:   "mask",
			Filename:   "test.go",
			Start:      at(3, 6),
			End:        at(3, 6),
			Complexity: 1,
			Message:    "result of mask needs 4 of 8 bits",
			Note:       "known bits: 0000UUUU",
		},
		{
			Kind:     tt.KindValue,
			Severity: tt.SeverityInfo,
			Function: "mask",
			Value:    "t0",
			Filename: "test.go",
			Start:    at(4, 11),
			End:      at(4, 11),
			Message:  "t0 (uint8) needs 4 of 8 bits",
			Note:     "known bits: 0000UUUU",
		},
	}

	expected := `info: narrow-result
 --> test.go:3:6
  |
3 | func mask(x uint8) uint8 {
  |      ~
  = result of mask needs 4 of 8 bits
  = Cyclomatic Complexity of mask: 1
Note: known bits: 0000UUUU

info: narrow-value
 --> test.go:4:11
  |
4 | return x & 0x0f
  |          ~
  = t0 (uint8) needs 4 of 8 bits
Note: known bits: 0000UUUU

`

	result := GenerateFormattedReport(reports, maskSource)
	assert.Equal(t, expected, result)
}

func TestGenerateFormattedReport_Warning(t *testing.T) {
	t.Parallel()
	reports := []tt.Report{
		{
			Kind:     tt.KindValue,
			Severity: tt.SeverityWarning,
			Filename: "test.go",
			Start:    at(4, 11),
			End:      at(4, 11),
			Message:  "t0 (uint8) needs 1 of 8 bits, always 0",
		},
	}

	expected := `warning: narrow-value
 --> test.go:4:11
  |
4 | return x & 0x0f
  |          ~
  = t0 (uint8) needs 1 of 8 bits, always 0

`

	assert.Equal(t, expected, GenerateFormattedReport(reports, maskSource))
}

func TestGenerateFormattedReport_MultipleDigitsLineNumbers(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"package main",
			"",
			"func main() {",
			"    x := 1",
			"    if true {}",
			"    println(\"hello\")",
			"    println(\"world\")",
			"    println(\"test\")",
			"    println(\"example\")",
			"    println(\"end\")",
		},
	}

	reports := []tt.Report{
		{
			Kind:     tt.KindValue,
			Filename: "test.go",
			Start:    at(10, 5),
			End:      at(10, 5),
			Message:  "t3 (int) needs 2 of 64 bits",
		},
	}

	expected := `info: narrow-value
  --> test.go:10:5
   |
10 | println("end")
   | ~
   = t3 (int) needs 2 of 64 bits

`

	assert.Equal(t, expected, GenerateFormattedReport(reports, code))
}

func TestGenerateFormattedReport_OutOfRange(t *testing.T) {
	t.Parallel()
	reports := []tt.Report{
		{
			Kind:     tt.KindValue,
			Filename: "test.go",
			Start:    at(42, 1),
			End:      at(42, 1),
			Message:  "t0 (uint8) needs 4 of 8 bits",
		},
	}

	expected := `info: narrow-value
  --> test.go:42:1
   |
   | t0 (uint8) needs 4 of 8 bits

`

	assert.Equal(t, expected, GenerateFormattedReport(reports, maskSource))
}

func TestComplexityInfo(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "  = Cyclomatic Complexity of f: 3\n", complexityInfo("  ", "f", 3))
	assert.Empty(t, complexityInfo("  ", "f", 0))
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"  \tx", 4, 8},
		{"\t\tx", 3, 16},
		{"abc", -1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column), "%q:%d", tt.line, tt.column)
	}
}

func TestFindCommonIndent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		expected string
		lines    []string
	}{
		{
			name: "whitespace indent",
			lines: []string{
				"    if foo {",
				"        println()",
				"    }",
			},
			expected: "    ",
		},
		{
			name: "tab indent",
			lines: []string{
				"\tif foo {",
				"\t\tprintln()",
				"\t}",
			},
			expected: "\t",
		},
		{
			name: "mixed indent (space and tab)",
			lines: []string{
				"\t    if foo {",
				"\t    \tprintln()",
				"\t    }",
			},
			expected: "\t    ",
		},
		{
			name: "no indent",
			lines: []string{
				"if foo {",
				"println()",
				"}",
			},
			expected: "",
		},
		{
			name: "empty line",
			lines: []string{
				"    if foo {",
				"",
				"        println()",
				"    }",
			},
			expected: "    ",
		},
		{
			name:     "empty input",
			lines:    []string{},
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, findCommonIndent(tt.lines))
		})
	}
}
