// Package metrics defines the Prometheus instruments for solves, the expression
// cache and plot sampling, and an optional HTTP listener that exposes them.
package metrics
