// Package command models the tree of executable commands: option values and
// schemas, sidecar descriptors, discovery from a root directory, path search
// and input validation.
package command
