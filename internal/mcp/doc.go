// Package mcp implements the Model Context Protocol (MCP) server for rootfinder.
//
// The server exposes the expression engine, the three root-finding methods and the
// run history to MCP clients:
//   - evaluate, derivative, plot: expression tools
//   - bisection, newton_raphson, secant, solve_all: solver tools
//   - list_runs, get_run, get_status: history and health
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol frames only. Logs go to stderr.
//
// # Tool: bisection
//
//	Request:
//	{
//	  "name": "bisection",
//	  "arguments": {
//	    "expression": "x^3 - x - 2",
//	    "a": 1,
//	    "b": 2,
//	    "tolerance": 0.001
//	  }
//	}
//
//	Response:
//	{
//	  "run_id": "0b5c2f9e-...",
//	  "method": "bisection",
//	  "status": "converged",
//	  "root": 1.521484375,
//	  "iterations": 9,
//	  "trace": [{"i": 1, "a": 1, "b": 2, "c": 1.5, "fc": -0.125}, ...],
//	  "lines": ["Iteration 1: a=1.000000, b=2.000000, c=1.500000, f(c)=-0.125000", ...]
//	}
//
// newton_raphson takes x0 and secant takes x0 and x1 in place of a and b. When
// tolerance or max_iterations are omitted the configured defaults (0.001 and 50)
// apply. A solve that runs out of iterations is not an error: it reports status
// "exhausted" with the full trace.
//
// # Tool: solve_all
//
// Runs every method whose starting points are present, concurrently, and returns one
// entry per method. A method that fails carries an "error" object with the same code
// the single-method tool would have returned.
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "rootfinder": {
//	      "command": "/usr/local/bin/rootfinder",
//	      "args": ["serve"],
//	      "env": {
//	        "ROOTFINDER_DB_PATH": "~/.rootfinder/history.db"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors:
//
//	{
//	  "error": {
//	    "code": -32003,
//	    "message": "f(a) and f(b) must have opposite signs",
//	    "data": {
//	      "method": "bisection",
//	      "error": "bisection: invalid bracket: ..."
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing or malformed arguments, invalid tolerance)
//   - -32603: Internal error (database, history disabled)
//   - -32001: Expression could not be parsed
//   - -32002: Expression could not be evaluated, or the iteration diverged
//   - -32003: Invalid bracket
//   - -32004: Stationary derivative
//   - -32005: Degenerate secant
//   - -32006: Run not found
//   - -32007: Invalid plot domain
package mcp
