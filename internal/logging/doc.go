// Package logging builds the structured zap logger shared by the server and CLI.
package logging
