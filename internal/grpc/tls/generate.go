package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	caValidity     = 10 * 365 * 24 * time.Hour
	serverValidity = 365 * 24 * time.Hour
)

func ParseCommaSeparated(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// EnsureServerCertificate issues a server certificate from a fresh local CA
// when the configured cert or key file is missing. Existing files are left
// untouched. The CA certificate is written to CAFile when one is configured.
func EnsureServerCertificate(cfg Config) error {
	if fileExists(cfg.CertFile) && fileExists(cfg.KeyFile) {
		slog.Debug("Using existing gRPC server certificate", "cert_path", cfg.CertFile)
		return nil
	}

	domains := ParseCommaSeparated(cfg.DomainNames)
	if len(domains) == 0 {
		domains = []string{"localhost"}
	}
	var ips []net.IP
	for _, raw := range ParseCommaSeparated(cfg.IPAddresses) {
		ip := net.ParseIP(raw)
		if ip == nil {
			return fmt.Errorf("invalid ip address %q", raw)
		}
		ips = append(ips, ip)
	}
	if len(ips) == 0 {
		ips = []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")}
	}

	slog.Info("gRPC server certificate not found, generating",
		"cert_path", cfg.CertFile,
		"domains", domains,
		"ips", ips)

	caCert, caKey, err := generateCA()
	if err != nil {
		return err
	}
	serverDER, serverKey, err := generateServerCert(caCert, caKey, domains, ips)
	if err != nil {
		return err
	}

	if err := writePEM(cfg.CertFile, "CERTIFICATE", serverDER, 0o644); err != nil {
		return err
	}
	keyDER, err := x509.MarshalECPrivateKey(serverKey)
	if err != nil {
		return fmt.Errorf("failed to marshal server key: %w", err)
	}
	if err := writePEM(cfg.KeyFile, "EC PRIVATE KEY", keyDER, 0o600); err != nil {
		return err
	}
	if cfg.CAFile != "" && !fileExists(cfg.CAFile) {
		if err := writePEM(cfg.CAFile, "CERTIFICATE", caCert.Raw, 0o644); err != nil {
			return err
		}
	}

	slog.Info("Generated gRPC server certificate", "cert_path", cfg.CertFile, "key_path", cfg.KeyFile)
	return nil
}

func serialNumber() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}
	return serial, nil
}

func generateCA() (*x509.Certificate, *ecdsa.PrivateKey, error) {
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate CA key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Agent Key"},
			CommonName:   "Agent Key Local CA",
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(caValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLenZero:        true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	caCert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CA certificate: %w", err)
	}
	return caCert, caKey, nil
}

func generateServerCert(caCert *x509.Certificate, caKey *ecdsa.PrivateKey, domains []string, ips []net.IP) ([]byte, *ecdsa.PrivateKey, error) {
	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate server key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"Agent Key"},
			CommonName:   domains[0],
		},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(serverValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              domains,
		IPAddresses:           ips,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, caCert, &serverKey.PublicKey, caKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server certificate: %w", err)
	}
	return der, serverKey, nil
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
