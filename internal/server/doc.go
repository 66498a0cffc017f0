// Package server implements the fixture's single listening endpoint.
//
// The server binds one port through the transport chosen by the
// transport package and treats every request in one of two ways:
//
//   - a WebSocket upgrade (any path, any origin) becomes a session.Session
//     that echoes every message back to its sender
//   - anything else gets the fallback response: 404 with the body
//     ENOTFOUNDNUBCAKE, whatever the method, path or headers
//
// # Usage Example
//
//	sel, err := transport.Select("https", transport.NewFileCredentials("", ""))
//	if err != nil {
//	    return err
//	}
//
//	agg := stats.New()
//	srv := server.New(server.Config{Port: 8080}, sel, agg)
//	if err := srv.Listen(); err != nil {
//	    return err // *server.ListenError
//	}
//
//	// Run blocks until ctx is cancelled, then shuts down
//	err = srv.Run(ctx)
//	report := agg.Finalize()
//
// # Statistics
//
// The server records each completed handshake on the stats.Aggregator and
// logs a progress line every 100th connection. Sessions record messages,
// echo failures and closes themselves.
//
// # Shutdown
//
// Shutdown stops accepting, closes every open session (each counts as a
// close) and waits up to ten seconds for session goroutines to return.
//
// # Thread Safety
//
// Each connection runs in its own goroutine. Messages of one connection are
// handled strictly in order; connections are independent of each other.
package server
