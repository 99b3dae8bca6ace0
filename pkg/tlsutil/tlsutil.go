// Package tlsutil builds transport security for the gRPC listener and mints
// throwaway certificates for local runs.
package tlsutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// LoadServerConfig reads the server key pair. When clientCAFile is set, peers
// must present a certificate signed by that CA.
func LoadServerConfig(certFile, keyFile, clientCAFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if clientCAFile == "" {
		return cfg, nil
	}

	pool, err := loadCertPool(clientCAFile)
	if err != nil {
		return nil, err
	}
	cfg.ClientCAs = pool
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	return cfg, nil
}

// ServerCredentials wraps LoadServerConfig for grpc.Creds.
func ServerCredentials(certFile, keyFile, clientCAFile string) (credentials.TransportCredentials, error) {
	cfg, err := LoadServerConfig(certFile, keyFile, clientCAFile)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

func loadCertPool(caFile string) (*x509.CertPool, error) {
	raw, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(raw) {
		return nil, errors.New("tlsutil: CA bundle contains no certificates")
	}
	return pool, nil
}

// DevCertOptions controls WriteDevCerts.
type DevCertOptions struct {
	// Hosts become DNS or IP SANs on the server and client leaves.
	Hosts        []string
	Organization string
	ValidFor     time.Duration
}

// DevCertFiles lists the PEM files written by WriteDevCerts.
type DevCertFiles struct {
	CACert     string
	ServerCert string
	ServerKey  string
	ClientCert string
	ClientKey  string
}

// WriteDevCerts creates a private CA in outDir and signs a server leaf and a
// client leaf with it. Keys are ECDSA P-256 and written with mode 0600.
func WriteDevCerts(outDir string, opts DevCertOptions) (DevCertFiles, error) {
	if len(opts.Hosts) == 0 {
		return DevCertFiles{}, errors.New("tlsutil: at least one host is required")
	}
	if opts.Organization == "" {
		opts.Organization = "Risk Engine Dev"
	}
	if opts.ValidFor <= 0 {
		opts.ValidFor = 365 * 24 * time.Hour
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevCertFiles{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}

	files := DevCertFiles{
		CACert:     filepath.Join(outDir, "ca.pem"),
		ServerCert: filepath.Join(outDir, "server.pem"),
		ServerKey:  filepath.Join(outDir, "server-key.pem"),
		ClientCert: filepath.Join(outDir, "client.pem"),
		ClientKey:  filepath.Join(outDir, "client-key.pem"),
	}

	notBefore := time.Now().Add(-time.Minute)
	ca := &x509.Certificate{
		Subject:               pkix.Name{Organization: []string{opts.Organization}, CommonName: opts.Organization + " CA"},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(opts.ValidFor),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caCert, caKey, err := issue(ca, nil, nil, files.CACert, "")
	if err != nil {
		return DevCertFiles{}, err
	}

	leaves := []struct {
		usage     x509.ExtKeyUsage
		cn        string
		cert, key string
	}{
		{x509.ExtKeyUsageServerAuth, "risk-engine", files.ServerCert, files.ServerKey},
		{x509.ExtKeyUsageClientAuth, "riskctl", files.ClientCert, files.ClientKey},
	}
	for _, leaf := range leaves {
		tmpl := &x509.Certificate{
			Subject:     pkix.Name{Organization: []string{opts.Organization}, CommonName: leaf.cn},
			NotBefore:   notBefore,
			NotAfter:    notBefore.Add(opts.ValidFor),
			KeyUsage:    x509.KeyUsageDigitalSignature,
			ExtKeyUsage: []x509.ExtKeyUsage{leaf.usage},
		}
		addSANs(tmpl, opts.Hosts)
		if _, _, err := issue(tmpl, caCert, caKey, leaf.cert, leaf.key); err != nil {
			return DevCertFiles{}, err
		}
	}

	return files, nil
}

// issue signs tmpl with parent (self-signed when parent is nil) and writes the
// certificate to certPath and, when keyPath is set, the private key.
func issue(tmpl, parent *x509.Certificate, parentKey crypto.Signer, certPath, keyPath string) (*x509.Certificate, crypto.Signer, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: serial number: %w", err)
	}
	tmpl.SerialNumber = serial

	if parent == nil {
		parent, parentKey = tmpl, key
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, parentKey)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: sign %s: %w", tmpl.Subject.CommonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsutil: parse %s: %w", tmpl.Subject.CommonName, err)
	}

	if err := writePEM(certPath, "CERTIFICATE", der); err != nil {
		return nil, nil, err
	}
	if keyPath != "" {
		keyDER, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("tlsutil: marshal key: %w", err)
		}
		if err := writePEM(keyPath, "EC PRIVATE KEY", keyDER); err != nil {
			return nil, nil, err
		}
	}
	return cert, key, nil
}

func addSANs(tmpl *x509.Certificate, hosts []string) {
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
			continue
		}
		tmpl.DNSNames = append(tmpl.DNSNames, h)
	}
}

func writePEM(path, blockType string, der []byte) error {
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", path, err)
	}
	return nil
}
