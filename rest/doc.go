// Package rest serves the command tree over HTTP: command runs and states,
// token login, the CAPTCHA and configuration endpoints, static dashboard
// assets and the MCP endpoint, all below the configured base path.
package rest
