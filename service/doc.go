// Package service wires the command tree, option validation, the runner, the
// audit reporter and the authentication gate into the pipeline shared by the
// REST and MCP adapters.
package service
