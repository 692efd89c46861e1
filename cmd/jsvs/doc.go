// Package jsvs provides the command-line interface for the jsvs scanner. It
// wires subcommands (scan, rules, test-rule, watch, version), resolves flags
// against config files and maps results to exit codes.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/jsvs/jsvs/cmd/jsvs"
//	func main() { jsvs.Execute() }
package jsvs
