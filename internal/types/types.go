package types

import "go/token"

// Report kinds, also used as //bitwidth:ignore targets.
const (
	KindValue   = "value"
	KindSummary = "summary"
)

// Severity orders reports by how much they matter.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// Report describes the known bits of one value or one function result.
type Report struct {
	Kind     string
	Severity Severity
	Function string
	Value    string
	Filename string
	Start    token.Position
	End      token.Position

	// Bits is the bitstring, most significant bit first.
	Bits        string
	Width       int
	Significant int
	Saved       int
	// Complexity is the cyclomatic complexity of Function.
	Complexity int

	Message string
	Note    string
}

// Settings configures an analysis engine.
type Settings struct {
	// Arch selects the gc integer sizes, such as amd64 or 386.
	Arch string `yaml:"arch"`
	// AddressWidth is the number of bits of an address.
	AddressWidth int `yaml:"address_width"`
	// Roots name functions whose returned value is not summarized, in
	// addition to main and init.
	Roots []string `yaml:"roots"`
	// IgnoreFunctions are analyzed but never reported.
	IgnoreFunctions []string `yaml:"ignore_functions"`
	// MinSavedBits drops reports that save fewer bits.
	MinSavedBits int `yaml:"min_saved_bits"`
}

// DefaultSettings returns the settings used without a configuration file.
func DefaultSettings() Settings {
	return Settings{
		Arch:         "amd64",
		AddressWidth: 64,
		MinSavedBits: 1,
	}
}
