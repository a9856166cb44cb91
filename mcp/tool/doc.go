// Package tool maps command tree paths to MCP tool names and resource URIs.
package tool
