// Package auth implements the authentication gate: Basic credential login
// with an optional CAPTCHA, issued tokens with an expiry, a fixed API token
// and a client IP allow-list.
package auth
