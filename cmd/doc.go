// Package cmd implements the command-line interface for inboxtriage.
//
// This package provides the following commands:
//   - serve: Run the triage web dashboard
//   - triage: Fetch, classify, and summarize recent mail once, printing to stdout
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
