// Package env resolves ${VAR} references in suite files.
//
// Variables come from a .env file next to the suite and fall back to the
// process environment. The process environment is never modified.
package env
