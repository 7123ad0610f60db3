package bitvalue

import (
	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
	"github.com/gnoverse/bitwidth/internal/ir"
	"go.uber.org/zap"
)

// DefaultAddressWidth is the pointer width assumed by address-of.
const DefaultAddressWidth = 32

// Update describes one change of the current estimate of a node.
// Old is nil the first time the node is written.
type Update struct {
	Func string
	Node ir.NodeID
	Old  lattice.Bitstring
	New  lattice.Bitstring
}

type config struct {
	logger       *zap.Logger
	addressWidth int
	summaries    *Summaries
	observer     func(Update)
}

// Option configures Analyze and AnalyzeProgram.
type Option func(*config)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAddressWidth sets the number of bits of an address.
func WithAddressWidth(width int) Option {
	return func(c *config) {
		if width > 0 {
			c.addressWidth = width
		}
	}
}

// WithSummaries shares a summary store between analyses.
func WithSummaries(s *Summaries) Option {
	return func(c *config) {
		c.summaries = s
	}
}

// WithObserver registers fn to be called on every update of a node.
// With AnalyzeProgram fn may be called from several goroutines.
func WithObserver(fn func(Update)) Option {
	return func(c *config) {
		c.observer = fn
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:       zap.NewNop(),
		addressWidth: DefaultAddressWidth,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.summaries == nil {
		c.summaries = NewSummaries()
	}
	return c
}
