// Package ecos holds build-wide metadata for the dreams tooling.
package ecos

// Version is reported by the CLI, the MCP server and the TUI title bar.
const Version = "0.3.0"
