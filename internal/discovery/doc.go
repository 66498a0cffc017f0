// Package discovery announces a running fixture on the local network over
// mDNS/DNS-SD, so load-balancer test rigs can find their backends without
// static configuration.
//
// The fixture registers itself as a "_wsfixture._tcp" service in the
// "local." domain. TXT records carry the flavor and whether the endpoint
// speaks TLS:
//
//	flavor=https
//	secure=true
//	path=/
//	version=v1.2.3
//
// Announcing is opt-in (--advertise) and never affects whether the server
// starts.
package discovery
