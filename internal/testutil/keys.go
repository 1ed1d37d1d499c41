package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

// KeyPair holds one RSA keypair encoded the way the service expects
// its configuration: base64 over PEM
type KeyPair struct {
	Private string
	Public  string
}

// Generate RSA keypair for token signing tests.
// 1024 bits is plenty for tests and much faster than 2048
func GenerateKeyPair(t *testing.T) KeyPair {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err, "Error happened when generating RSA key")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err, "Error happened when marshaling public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return KeyPair{
		Private: base64.StdEncoding.EncodeToString(privPEM),
		Public:  base64.StdEncoding.EncodeToString(pubPEM),
	}
}
