// Package bitvalue computes, for every integer value of a function in SSA
// form, which of its bits are statically known.
//
// The analysis is a forward dataflow over the four valued bit lattice of
// package lattice. Analyze drains a FIFO worklist of assignments, phis,
// returns and asm statements until no value changes; each value only moves
// down the lattice, so the loop terminates. Transfer implements the bit
// exact semantics of every operator in ir.Op.
//
// Functions are analyzed independently. Return values are summarized into a
// Summaries store that later analyses consult at call sites; AnalyzeProgram
// schedules the functions of a program so that callees are summarized before
// their callers.
package bitvalue
