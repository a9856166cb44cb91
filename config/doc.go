// Package config defines the YAML/TOML configuration model of the server
// together with helpers to load, validate and export it to commands.
package config
