// Package exprcache caches compiled expressions and derivatives for long-lived
// callers such as the MCP server, where the same expression is often solved by
// several methods or re-plotted.
//
// Entries are keyed by the SHA-256 of the trimmed source text. The cache is safe
// for concurrent use and plugs into the solver as a solver.Compiler:
//
//	cache := exprcache.New(1024)
//	s := solver.New(cache)
package exprcache
