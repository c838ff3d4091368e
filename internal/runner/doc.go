// Package runner executes solve requests, records their metrics and writes them
// to the run history. RunAll fans independent requests out over a bounded pool.
package runner
