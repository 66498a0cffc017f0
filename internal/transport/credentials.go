package transport

import (
	"crypto/tls"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/logging"
)

// Default credential locations, relative to the working directory
const (
	DefaultCertPath = "ssl/server.crt"
	DefaultKeyPath  = "ssl/server.key"
)

// SecurityContext is the PEM-encoded certificate and key for a secure flavor.
// It is never modified after startup.
type SecurityContext struct {
	CertPEM []byte
	KeyPEM  []byte
}

// KeyPair parses the context into a tls.Certificate
func (sc *SecurityContext) KeyPair() (tls.Certificate, error) {
	cert, err := tls.X509KeyPair(sc.CertPEM, sc.KeyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("invalid certificate/key pair: %w", err)
	}
	return cert, nil
}

// CredentialProvider supplies TLS material for secure flavors.
type CredentialProvider interface {
	Credentials() (*SecurityContext, error)
}

// FileCredentials reads a PEM certificate and key from disk.
type FileCredentials struct {
	CertPath string
	KeyPath  string
}

// NewFileCredentials returns a provider for the given paths, defaulting empty
// ones to DefaultCertPath and DefaultKeyPath.
func NewFileCredentials(certPath, keyPath string) *FileCredentials {
	if certPath == "" {
		certPath = DefaultCertPath
	}
	if keyPath == "" {
		keyPath = DefaultKeyPath
	}
	return &FileCredentials{CertPath: certPath, KeyPath: keyPath}
}

// Credentials reads both files and checks that they form a valid pair
func (f *FileCredentials) Credentials() (*SecurityContext, error) {
	certPEM, err := os.ReadFile(f.CertPath)
	if err != nil {
		return nil, &CredentialError{Source: f.CertPath, Err: err}
	}
	keyPEM, err := os.ReadFile(f.KeyPath)
	if err != nil {
		return nil, &CredentialError{Source: f.KeyPath, Err: err}
	}

	sc := &SecurityContext{CertPEM: certPEM, KeyPEM: keyPEM}
	if _, err := sc.KeyPair(); err != nil {
		return nil, &CredentialError{Source: f.CertPath, Err: err}
	}

	logging.Info("TLS credentials loaded from files",
		zap.String("cert", f.CertPath),
		zap.String("key", f.KeyPath),
	)
	return sc, nil
}

// GeneratedCredentials creates a self-signed certificate in memory.
// The certificate is never written to disk.
type GeneratedCredentials struct {
	Params CertParams
}

// NewGeneratedCredentials returns a provider using DefaultCertParams
func NewGeneratedCredentials() *GeneratedCredentials {
	return &GeneratedCredentials{Params: DefaultCertParams()}
}

// Credentials generates a fresh certificate on every call
func (g *GeneratedCredentials) Credentials() (*SecurityContext, error) {
	cert, err := GenerateSelfSigned(g.Params)
	if err != nil {
		return nil, &CredentialError{Source: "generated", Err: err}
	}

	logging.Info("Generated self-signed certificate",
		zap.String("CN", cert.Certificate.Subject.CommonName),
		zap.Strings("dns_names", cert.Certificate.DNSNames),
		zap.Time("not_after", cert.Certificate.NotAfter),
	)
	return &SecurityContext{CertPEM: cert.CertPEM, KeyPEM: cert.KeyPEM}, nil
}
