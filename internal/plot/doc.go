// Package plot samples an expression over a domain for clients that draw f(x).
//
// Sampling never aborts on an undefined point: each point carries its own Valid flag
// and error message, and Series.Failures counts them.
package plot
