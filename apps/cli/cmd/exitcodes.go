package cmd

// Exit codes for hitcheck CLI
const (
	// ExitSuccess indicates all suites passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more checks failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite could not be loaded
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
