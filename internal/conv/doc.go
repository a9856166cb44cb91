// Package conv holds pointer and JSON helpers shared by the MCP adapter.
package conv
