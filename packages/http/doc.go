// Package http performs the HTTP calls whose responses are asserted on.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts, redirect handling, proxy and TLS verification
//   - Default headers applied to every request
//   - Timing of each call
//   - Conversion of a response into response.Capture
package http
