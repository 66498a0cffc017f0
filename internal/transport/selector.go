package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/net/http2"
)

// Selection is the resolved transport: a flavor and, for secure flavors,
// its credentials.
type Selection struct {
	Flavor   Flavor
	Security *SecurityContext
}

// strategy is the per-flavor way of preparing the server and listener
type strategy struct {
	// protos advertised via ALPN; only used by secure flavors
	protos []string
	// configure adjusts the server after TLSConfig has been set
	configure func(srv *http.Server) error
}

var strategies = map[Flavor]strategy{
	Plain: {
		configure: disableHTTP2,
	},
	TLS: {
		protos:    []string{"http/1.1"},
		configure: disableHTTP2,
	},
	MultiplexedTLS: {
		protos: []string{http2.NextProtoTLS, "http/1.1"},
		configure: func(srv *http.Server) error {
			return http2.ConfigureServer(srv, &http2.Server{})
		},
	},
}

// A non-nil empty TLSNextProto keeps net/http from enabling HTTP/2 on its own
func disableHTTP2(srv *http.Server) error {
	srv.TLSNextProto = map[string]func(*http.Server, *tls.Conn, http.Handler){}
	return nil
}

// Select resolves token into a Selection, loading credentials from creds
// when the flavor is secure. It does not open any sockets.
func Select(token string, creds CredentialProvider) (*Selection, error) {
	flavor := ParseFlavor(token)
	sel := &Selection{Flavor: flavor}

	if !flavor.Secure() {
		return sel, nil
	}
	if creds == nil {
		return nil, &CredentialError{Source: "none", Err: fmt.Errorf("flavor %s requires TLS credentials", flavor)}
	}

	sc, err := creds.Credentials()
	if err != nil {
		return nil, err
	}
	sel.Security = sc
	return sel, nil
}

// Listen prepares srv for the selected flavor and binds addr. For secure
// flavors the returned listener performs the TLS handshake, so everything
// the server reads is already decrypted.
func (s *Selection) Listen(srv *http.Server, addr string) (net.Listener, error) {
	st, ok := strategies[s.Flavor]
	if !ok {
		return nil, fmt.Errorf("no transport strategy for flavor %d", s.Flavor)
	}

	if s.Flavor.Secure() {
		tlsConfig, err := NewTLSConfig(s.Security, st.protos...)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = tlsConfig
	}

	if err := st.configure(srv); err != nil {
		return nil, fmt.Errorf("failed to configure %s transport: %w", s.Flavor, err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	if srv.TLSConfig == nil {
		return ln, nil
	}

	logTLSConfig(s.Flavor, srv.TLSConfig)
	return tls.NewListener(ln, srv.TLSConfig), nil
}
