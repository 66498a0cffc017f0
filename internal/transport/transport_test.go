package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFlavor(t *testing.T) {
	tests := []struct {
		token string
		want  Flavor
	}{
		{"http", Plain},
		{"HTTP", Plain},
		{"", Plain},
		{"gopher", Plain},
		{"https", TLS},
		{"HTTPS", TLS},
		{" https ", TLS},
		{"spdy", MultiplexedTLS},
		{"SpDy", MultiplexedTLS},
		{"h2", MultiplexedTLS},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := ParseFlavor(tt.token); got != tt.want {
				t.Errorf("ParseFlavor(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestFlavor_SecureAndString(t *testing.T) {
	tests := []struct {
		flavor Flavor
		secure bool
		name   string
	}{
		{Plain, false, "http"},
		{TLS, true, "https"},
		{MultiplexedTLS, true, "spdy"},
	}

	for _, tt := range tests {
		if got := tt.flavor.Secure(); got != tt.secure {
			t.Errorf("%v.Secure() = %v, want %v", tt.flavor, got, tt.secure)
		}
		if got := tt.flavor.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if ParseFlavor(tt.flavor.String()) != tt.flavor {
			t.Errorf("ParseFlavor(%q) does not round trip", tt.flavor.String())
		}
	}

	if len(Flavors()) != 3 {
		t.Errorf("Flavors() returned %d flavors, want 3", len(Flavors()))
	}
}

type failingProvider struct{ called int }

func (p *failingProvider) Credentials() (*SecurityContext, error) {
	p.called++
	return nil, &CredentialError{Source: "test", Err: os.ErrNotExist}
}

func TestSelect_PlainSkipsCredentials(t *testing.T) {
	provider := &failingProvider{}

	sel, err := Select("http", provider)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if sel.Flavor != Plain || sel.Security != nil {
		t.Errorf("Select() = %+v, want plain without security context", sel)
	}
	if provider.called != 0 {
		t.Errorf("credential provider called %d times for plain flavor", provider.called)
	}
}

func TestSelect_SecureRequiresCredentials(t *testing.T) {
	for _, token := range []string{"https", "spdy"} {
		t.Run(token, func(t *testing.T) {
			_, err := Select(token, &failingProvider{})
			var credErr *CredentialError
			if !errors.As(err, &credErr) {
				t.Fatalf("Select(%q) error = %v, want *CredentialError", token, err)
			}
			if !errors.Is(err, os.ErrNotExist) {
				t.Errorf("expected error chain to contain os.ErrNotExist, got %v", err)
			}

			if _, err := Select(token, nil); err == nil {
				t.Error("Select() with nil provider should fail for secure flavor")
			}
		})
	}
}

func TestFileCredentials(t *testing.T) {
	dir := t.TempDir()
	cert, err := GenerateSelfSigned(DefaultCertParams())
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certPath, cert.CertPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, cert.KeyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	sc, err := NewFileCredentials(certPath, keyPath).Credentials()
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if string(sc.CertPEM) != string(cert.CertPEM) {
		t.Error("certificate bytes differ from file content")
	}

	t.Run("missing key", func(t *testing.T) {
		_, err := NewFileCredentials(certPath, filepath.Join(dir, "nope.key")).Credentials()
		var credErr *CredentialError
		if !errors.As(err, &credErr) {
			t.Fatalf("expected *CredentialError, got %v", err)
		}
		if !strings.HasSuffix(credErr.Source, "nope.key") {
			t.Errorf("Source = %q, want the missing key path", credErr.Source)
		}
	})

	t.Run("mismatched pair", func(t *testing.T) {
		if err := os.WriteFile(keyPath, []byte("not a key"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileCredentials(certPath, keyPath).Credentials(); err == nil {
			t.Error("expected error for invalid key material")
		}
	})
}

func TestNewFileCredentials_Defaults(t *testing.T) {
	fc := NewFileCredentials("", "")
	if fc.CertPath != DefaultCertPath || fc.KeyPath != DefaultKeyPath {
		t.Errorf("NewFileCredentials defaults = %+v", fc)
	}
}

func TestGenerateSelfSigned(t *testing.T) {
	cert, err := GenerateSelfSigned(DefaultCertParams())
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	if cert.Certificate.Subject.CommonName != "localhost" {
		t.Errorf("CN = %q, want localhost", cert.Certificate.Subject.CommonName)
	}
	if len(cert.Certificate.IPAddresses) != 2 {
		t.Errorf("expected 2 IP SANs, got %v", cert.Certificate.IPAddresses)
	}
	if err := cert.Certificate.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname(localhost) error = %v", err)
	}
	if err := cert.Certificate.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("VerifyHostname(127.0.0.1) error = %v", err)
	}

	if _, err := GenerateSelfSigned(CertParams{CommonName: "x"}); err == nil {
		t.Error("expected error for zero validity")
	}
}

func TestGeneratedCredentials(t *testing.T) {
	sc, err := NewGeneratedCredentials().Credentials()
	if err != nil {
		t.Fatalf("Credentials() error = %v", err)
	}
	if _, err := sc.KeyPair(); err != nil {
		t.Errorf("generated pair does not parse: %v", err)
	}
}

// serveSelection binds sel on a random port and serves a trivial handler
func serveSelection(t *testing.T, sel *Selection) string {
	t.Helper()

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.Proto)
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := sel.Listen(srv, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	return ln.Addr().String()
}

func TestSelection_ListenNegotiatesProtocols(t *testing.T) {
	cert, err := GenerateSelfSigned(DefaultCertParams())
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}
	sc := &SecurityContext{CertPEM: cert.CertPEM, KeyPEM: cert.KeyPEM}

	roots := x509.NewCertPool()
	roots.AddCert(cert.Certificate)

	tests := []struct {
		flavor    Flavor
		wantProto string
	}{
		{TLS, "http/1.1"},
		{MultiplexedTLS, "h2"},
	}

	for _, tt := range tests {
		t.Run(tt.flavor.String(), func(t *testing.T) {
			addr := serveSelection(t, &Selection{Flavor: tt.flavor, Security: sc})

			conn, err := tls.Dial("tcp", addr, &tls.Config{
				RootCAs:    roots,
				ServerName: "localhost",
				NextProtos: []string{"h2", "http/1.1"},
			})
			if err != nil {
				t.Fatalf("tls.Dial() error = %v", err)
			}
			defer conn.Close()

			if got := conn.ConnectionState().NegotiatedProtocol; got != tt.wantProto {
				t.Errorf("negotiated protocol = %q, want %q", got, tt.wantProto)
			}
		})
	}
}

func TestSelection_PlainRejectsTLSHandshake(t *testing.T) {
	addr := serveSelection(t, &Selection{Flavor: Plain})

	conn, err := tls.DialWithDialer(&netDialer, "tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err == nil {
		conn.Close()
		t.Fatal("expected TLS handshake against plain listener to fail")
	}

	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("plain GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "HTTP/1.1" {
		t.Errorf("plain request served over %q, want HTTP/1.1", body)
	}
}

func TestSelection_SecureWithoutContextFails(t *testing.T) {
	srv := &http.Server{}
	if _, err := (&Selection{Flavor: TLS}).Listen(srv, "127.0.0.1:0"); err == nil {
		t.Error("expected error when TLS flavor has no security context")
	}
}

var netDialer = net.Dialer{Timeout: 5 * time.Second}
