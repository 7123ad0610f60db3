// Package cfg provides orderings over directed graphs whose nodes are dense
// integer indices, such as the basic blocks of a function or the functions
// of a call graph.
//
// Two orderings are available:
//
//   - Postorder and ReversePostorder: depth-first orderings from an entry
//     node, used to seed dataflow worklists so that definitions tend to be
//     visited before their uses.
//   - SCCs: strongly connected components in topological order of the
//     condensed graph, used to schedule interprocedural analysis so that
//     callees are summarized before their callers.
package cfg
