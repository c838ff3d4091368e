package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func expressionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Function of x, e.g. \"x^3 - x - 2\" or \"cos(x) - x\". Supports + - * / ^, pi, e and sin, cos, tan, exp, log, sqrt, abs and related functions",
	}
}

func numberProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

// solverProperties returns the shared properties of the solver tools merged with extra
func solverProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"expression": expressionProperty(),
		"tolerance": map[string]interface{}{
			"type":        "number",
			"description": "Convergence tolerance (must be > 0)",
			"default":     0.001,
		},
		"max_iterations": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of iterations (must be >= 1)",
			"default":     50,
			"minimum":     1,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// evaluateTool returns the tool definition for evaluate
func evaluateTool() mcp.Tool {
	return mcp.Tool{
		Name:        "evaluate",
		Description: "Evaluate an expression of x at a point",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"expression": expressionProperty(),
				"x":          numberProperty("Point at which to evaluate"),
			},
			Required: []string{"expression", "x"},
		},
	}
}

// derivativeTool returns the tool definition for derivative
func derivativeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "derivative",
		Description: "Differentiate an expression with respect to x symbolically, optionally evaluating the result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"expression": expressionProperty(),
				"x":          numberProperty("Optional point at which to evaluate the derivative"),
			},
			Required: []string{"expression"},
		},
	}
}

// plotTool returns the tool definition for plot
func plotTool() mcp.Tool {
	return mcp.Tool{
		Name:        "plot",
		Description: "Sample an expression over an interval. Points that cannot be evaluated are reported individually and sign changes are listed as candidate brackets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"expression": expressionProperty(),
				"min": map[string]interface{}{
					"type":        "number",
					"description": "Left end of the interval",
					"default":     -10,
				},
				"max": map[string]interface{}{
					"type":        "number",
					"description": "Right end of the interval",
					"default":     10,
				},
				"points": map[string]interface{}{
					"type":        "integer",
					"description": "Number of evenly spaced samples, both ends included",
					"default":     400,
					"minimum":     2,
					"maximum":     MaxPlotPoints,
				},
			},
			Required: []string{"expression"},
		},
	}
}

// bisectionTool returns the tool definition for bisection
func bisectionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "bisection",
		Description: "Find a root with the bisection method. f(a) and f(b) must have opposite signs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solverProperties(map[string]interface{}{
				"a": numberProperty("Left end of the bracket"),
				"b": numberProperty("Right end of the bracket"),
			}),
			Required: []string{"expression", "a", "b"},
		},
	}
}

// newtonRaphsonTool returns the tool definition for newton_raphson
func newtonRaphsonTool() mcp.Tool {
	return mcp.Tool{
		Name:        "newton_raphson",
		Description: "Find a root with the Newton-Raphson method using the symbolic derivative",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solverProperties(map[string]interface{}{
				"x0": numberProperty("Initial guess"),
			}),
			Required: []string{"expression", "x0"},
		},
	}
}

// secantTool returns the tool definition for secant
func secantTool() mcp.Tool {
	return mcp.Tool{
		Name:        "secant",
		Description: "Find a root with the secant method from two initial guesses",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solverProperties(map[string]interface{}{
				"x0": numberProperty("First initial guess"),
				"x1": numberProperty("Second initial guess"),
			}),
			Required: []string{"expression", "x0", "x1"},
		},
	}
}

// solveAllTool returns the tool definition for solve_all
func solveAllTool() mcp.Tool {
	return mcp.Tool{
		Name:        "solve_all",
		Description: "Run every method whose starting points are given (a and b for bisection, x0 for Newton-Raphson, x0 and x1 for secant) concurrently and compare the results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: solverProperties(map[string]interface{}{
				"a":  numberProperty("Left end of the bisection bracket"),
				"b":  numberProperty("Right end of the bisection bracket"),
				"x0": numberProperty("Initial guess for Newton-Raphson and first guess for secant"),
				"x1": numberProperty("Second guess for secant"),
			}),
			Required: []string{"expression"},
		},
	}
}

// listRunsTool returns the tool definition for list_runs
func listRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded solve runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"method": map[string]interface{}{
					"type":        "string",
					"description": "Only runs of this method",
					"enum":        []string{"bisection", "newton_raphson", "secant"},
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Only runs with this outcome",
					"enum":        []string{"converged", "exhausted", "failed"},
				},
				"expression": map[string]interface{}{
					"type":        "string",
					"description": "Only runs of this exact expression",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return",
					"default":     50,
					"minimum":     1,
					"maximum":     MaxListLimit,
				},
			},
		},
	}
}

// getRunTool returns the tool definition for get_run
func getRunTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_run",
		Description: "Fetch a recorded run with its full iteration trace",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run identifier returned by a solver tool or list_runs",
				},
			},
			Required: []string{"run_id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report server defaults, expression cache statistics and run history health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
