// Command genkeys prints the four token signing keys as env lines,
// ready to paste into a .env file.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
)

const keyBits = 2048

func main() {
	for prefix, keys := range map[string][2]string{
		"ACCESS_TOKEN":  {"PRIVATE_KEY", "PUBLIC_KEY"},
		"REFRESH_TOKEN": {"PRIVATE_KEY", "PUBLIC_KEY"},
	} {
		private, public, err := generatePair()
		if err != nil {
			fmt.Printf("error while generating %s keypair: %v\n", prefix, err)
			os.Exit(1)
		}

		fmt.Printf("%s_%s=%s\n", prefix, keys[0], private)
		fmt.Printf("%s_%s=%s\n", prefix, keys[1], public)
	}
}

func generatePair() (private string, public string, err error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return "", "", err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return base64.StdEncoding.EncodeToString(privPEM), base64.StdEncoding.EncodeToString(pubPEM), nil
}
