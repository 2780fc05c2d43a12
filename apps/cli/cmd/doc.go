// Package cmd implements the hitcheck CLI commands using Cobra.
//
// Available commands:
//   - run: Execute suites and report their checks
//   - validate: Load suites, compile their rules and parse their schemas
//   - version: Show hitcheck version information
//
// Flags fall back to HITCHECK_* environment variables and then to the
// .hitcheck.yaml configuration file.
package cmd
