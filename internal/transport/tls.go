package transport

import (
	"crypto/tls"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/logging"
)

// NewTLSConfig builds a server TLS config from sc, advertising protos via ALPN
func NewTLSConfig(sc *SecurityContext, protos ...string) (*tls.Config, error) {
	if sc == nil {
		return nil, fmt.Errorf("no security context for TLS transport")
	}

	cert, err := sc.KeyPair()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   append([]string(nil), protos...),

		VerifyConnection: func(cs tls.ConnectionState) error {
			logging.LogTLSHandshake(cs)
			return nil
		},
	}, nil
}

// TLSInfo returns a loggable summary of a TLS config
func TLSInfo(config *tls.Config) map[string]interface{} {
	info := map[string]interface{}{
		"min_version": tls.VersionName(config.MinVersion),
		"next_protos": strings.Join(config.NextProtos, ","),
		"num_certs":   len(config.Certificates),
	}
	if len(config.Certificates) > 0 && config.Certificates[0].Leaf != nil {
		leaf := config.Certificates[0].Leaf
		info["subject"] = leaf.Subject.CommonName
		info["not_after"] = leaf.NotAfter
	}
	return info
}

func logTLSConfig(flavor Flavor, config *tls.Config) {
	logging.Info("TLS configuration",
		zap.String("flavor", flavor.String()),
		zap.Any("tls_info", TLSInfo(config)),
	)
}
