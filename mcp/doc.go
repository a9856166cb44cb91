// Package mcp exposes the command tree over JSON-RPC 2.0 using the Model
// Context Protocol: leaf commands become tools and commands supporting state
// become resources. Messages arrive over HTTP or line-delimited stdio.
package mcp
