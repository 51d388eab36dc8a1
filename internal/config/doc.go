// Package config loads the colony server settings from an optional JSON file
// and the COLONY_MCP_* environment variables.
package config
