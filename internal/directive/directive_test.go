package directive

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Set {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return Parse(f, fset)
}

func at(line int) token.Position {
	return token.Position{Filename: "test.go", Line: line, Column: 1}
}

func TestParseKinds(t *testing.T) {
	t.Parallel()
	kinds := parseKinds("value, summary,,")
	assert.Len(t, kinds, 2)
	assert.Contains(t, kinds, "value")
	assert.Contains(t, kinds, "summary")
	assert.Empty(t, parseKinds(""))
}

func TestIgnoredScopes(t *testing.T) {
	t.Parallel()
	src := `package main

func f(x uint8) uint8 {
	//bitwidth:ignore
	a := x & 1
	b := x | 2
	c := a + b //bitwidth:ignore:value
	//bitwidth:ignore:summary
	return c
}

//bitwidth:ignore
func g() {
	_ = 1
}
`
	s := parse(t, src)
	assert.Equal(t, 4, s.Len())

	tests := []struct {
		name string
		kind string
		line int
		want bool
	}{
		{"statement below", "value", 5, true},
		{"not covered", "value", 6, false},
		{"inline", "value", 7, true},
		{"inline other kind", "summary", 7, false},
		{"kind list", "summary", 9, true},
		{"kind list other kind", "value", 9, false},
		{"function", "value", 14, true},
		{"function end", "summary", 15, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.Ignored(at(tt.line), tt.kind))
		})
	}
}

func TestFileScope(t *testing.T) {
	t.Parallel()
	src := `//bitwidth:ignore:value
package main

func f() int { return 1 }
`
	s := parse(t, src)
	assert.True(t, s.Ignored(at(4), "value"))
	assert.False(t, s.Ignored(at(4), "summary"))
	assert.False(t, s.Ignored(token.Position{Filename: "other.go", Line: 4}, "value"))
}

func TestMalformedDirectives(t *testing.T) {
	t.Parallel()
	src := `package main

//bitwidth:ignorevalue
//bitwidth:ignore:
// bitwidth:ignore
var x = 1
`
	s := parse(t, src)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Ignored(at(6), "value"))
}

func TestNilSet(t *testing.T) {
	t.Parallel()
	var s *Set
	assert.False(t, s.Ignored(at(1), "value"))
}
