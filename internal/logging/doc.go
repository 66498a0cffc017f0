// Package logging provides structured logging for the fixture.
//
// The package wraps a process-wide zap logger with convenience functions for
// the events the fixture cares about: transport setup, TLS handshakes,
// WebSocket upgrades, echoed messages and fallback responses.
//
// # Log Levels
//
//   - Debug: per-message echo details, hex dumps, HTTP request headers
//   - Info: listener and connection lifecycle, connection milestones
//   - Warn: echo write failures, rejected handshakes
//   - Error: startup failures
//
// # Configuration
//
// Initialize logging once at startup:
//
//	if err := logging.Initialize("info"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// An empty level falls back to the WSFIXTURE_LOG_LEVEL environment variable;
// if that is unset too, logging is silent.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
