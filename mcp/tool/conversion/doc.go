// Package conversion translates command descriptors into MCP tool schemas
// and MCP call arguments into command input.
package conversion
