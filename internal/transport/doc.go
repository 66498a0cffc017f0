// Package transport maps the configured flavor to the byte transport the
// fixture listens on.
//
// Three flavors exist:
//
//	http   plain TCP, HTTP/1.1 only
//	https  TLS over TCP, ALPN http/1.1 only
//	spdy   TLS over TCP with the multiplexed HTTP/2 server enabled
//	       (ALPN h2 and http/1.1)
//
// The flavor token is resolved once at startup by Select. Secure flavors load
// a SecurityContext through a CredentialProvider before any socket is opened;
// failing to load one is fatal. Each flavor has its own strategy that
// configures the *http.Server and wraps the TCP listener.
//
// WebSocket upgrades need an HTTP/1.1 connection to hijack. Under the spdy
// flavor a client that negotiates h2 gets the fallback response, one that
// negotiates http/1.1 can upgrade normally.
package transport
