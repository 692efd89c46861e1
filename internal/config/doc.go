// Package config loads jsvs settings from project-local and global YAML
// files. The CLI merges them under its flags; nothing here knows about the
// engine.
package config
