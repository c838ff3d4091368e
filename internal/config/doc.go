// Package config loads rootfinder settings from defaults, an optional YAML file
// and ROOTFINDER_ prefixed environment variables.
package config
