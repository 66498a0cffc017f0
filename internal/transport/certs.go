package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"
)

// CertParams holds parameters for generating a self-signed certificate.
type CertParams struct {
	// CommonName is the CN field (default: localhost)
	CommonName string
	// Organization is the O field (default: Balancer Battle)
	Organization string
	// Hosts become SANs; entries that parse as IPs become IP SANs
	Hosts []string
	// ValidDays is certificate validity in days (default: 365)
	ValidDays int
}

// DefaultCertParams returns parameters suitable for a fixture on the local machine
func DefaultCertParams() CertParams {
	return CertParams{
		CommonName:   "localhost",
		Organization: "Balancer Battle",
		Hosts:        []string{"localhost", "127.0.0.1", "::1"},
		ValidDays:    365,
	}
}

// GeneratedCert is a generated certificate in its useful encodings.
type GeneratedCert struct {
	// CertPEM is the certificate in PEM format
	CertPEM []byte
	// KeyPEM is the private key in PEM format
	KeyPEM []byte
	// Certificate is the parsed x509 certificate
	Certificate *x509.Certificate
}

// GenerateSelfSigned creates an RSA 2048-bit, SHA-256 signed certificate that
// is its own issuer. It is marked as a CA so clients can trust it directly
// by adding it to their root pool.
func GenerateSelfSigned(params CertParams) (*GeneratedCert, error) {
	if params.ValidDays <= 0 {
		return nil, fmt.Errorf("invalid validity period: %d days", params.ValidDays)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute)
	notAfter := notBefore.AddDate(0, 0, params.ValidDays)

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{params.Organization},
			CommonName:   params.CommonName,
		},
		NotBefore: notBefore,
		NotAfter:  notAfter,

		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},

		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	for _, host := range params.Hosts {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &GeneratedCert{
		CertPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: certDER,
		}),
		KeyPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
		}),
		Certificate: cert,
	}, nil
}
