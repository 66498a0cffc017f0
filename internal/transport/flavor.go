package transport

import "strings"

// Flavor selects the transport and security layer.
type Flavor int

const (
	// Plain is unencrypted HTTP/1.1 (the default).
	Plain Flavor = iota
	// TLS is HTTP/1.1 over TLS.
	TLS
	// MultiplexedTLS is TLS with the multiplexed HTTP/2 server enabled.
	MultiplexedTLS
)

// DefaultFlavor is used when the token is empty or unrecognised
const DefaultFlavor = Plain

// String returns the canonical flavor token
func (f Flavor) String() string {
	switch f {
	case Plain:
		return "http"
	case TLS:
		return "https"
	case MultiplexedTLS:
		return "spdy"
	default:
		return "unknown"
	}
}

// Secure reports whether the flavor needs TLS credentials.
// The multiplexed transport is always TLS-backed.
func (f Flavor) Secure() bool {
	return f == TLS || f == MultiplexedTLS
}

// Flavors returns every flavor in declaration order
func Flavors() []Flavor {
	return []Flavor{Plain, TLS, MultiplexedTLS}
}

// ParseFlavor resolves a configuration token, case-insensitively.
// Anything it does not recognise falls back to DefaultFlavor.
func ParseFlavor(token string) Flavor {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "https":
		return TLS
	case "spdy", "h2":
		return MultiplexedTLS
	default:
		return DefaultFlavor
	}
}
