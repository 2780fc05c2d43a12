// Package output provides reporters for displaying assertion results.
//
// Supported reporters:
//   - Console: Human-readable colored terminal output
//   - Log: Structured entries through logrus
//   - TAP: Test Anything Protocol format
//
// Every reporter implements Reporter, the sink used by response snapshots,
// and RunReporter, which the CLI uses for run summaries and errors.
package output
