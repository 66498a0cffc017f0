// Package config loads the fixture's runtime settings.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional YAML file, environment variables, and command-line flags (applied
// by the CLI). The flavor follows the FLAVOR environment variable so the
// fixture can be switched without touching its command line:
//
//	FLAVOR=spdy  wsfixture    # multiplexed TLS
//	FLAVOR=https wsfixture    # TLS
//	FLAVOR=http  wsfixture    # plain
//	wsfixture                 # plain
//
// Example file:
//
//	flavor: https
//	port: 8443
//	cert: ssl/server.crt
//	key: ssl/server.key
//	log_level: debug
package config
