// Package mtckey loads and saves the Ed25519 issuer signing key as
// PKCS#8/SubjectPublicKeyInfo PEM, optionally wrapping the private key at
// rest with AES-256-GCM under a PBKDF2-HMAC-SHA256-derived passphrase key.
package mtckey

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pkcs8PrivateKeyBlock     = "PRIVATE KEY"
	encryptedPrivateKeyBlock = "MTC ENCRYPTED PRIVATE KEY"
	publicKeyBlock           = "PUBLIC KEY"

	pbkdf2Iterations = 200_000
	saltSize         = 16
	nonceSize        = 12
)

// Generate returns a fresh Ed25519 key pair.
func Generate() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("mtckey: generate key: %w", err)
	}
	return pub, priv, nil
}

// WritePrivate PEM-encodes priv as PKCS#8 and writes it to path. When
// passphrase is non-empty, the PKCS#8 bytes are wrapped with AES-256-GCM
// under a key derived from passphrase via PBKDF2-HMAC-SHA256, and the salt
// and nonce travel as hex-encoded PEM headers alongside the ciphertext.
func WritePrivate(path string, priv ed25519.PrivateKey, passphrase string) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return fmt.Errorf("mtckey: marshal private key: %w", err)
	}

	if passphrase == "" {
		block := &pem.Block{Type: pkcs8PrivateKeyBlock, Bytes: der}
		return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("mtckey: generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("mtckey: generate nonce: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return err
	}
	ciphertext := gcm.Seal(nil, nonce, der, nil)

	block := &pem.Block{
		Type: encryptedPrivateKeyBlock,
		Headers: map[string]string{
			"Salt":  hex.EncodeToString(salt),
			"Nonce": hex.EncodeToString(nonce),
			"KDF":   "PBKDF2-HMAC-SHA256",
		},
		Bytes: ciphertext,
	}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}

// ReadPrivate reads back a key written by WritePrivate. passphrase must
// match what was used to write an encrypted key, and must be empty for a
// plain one.
func ReadPrivate(path string, passphrase string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mtckey: read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("mtckey: %s is not PEM-encoded", path)
	}

	var der []byte
	switch block.Type {
	case pkcs8PrivateKeyBlock:
		if passphrase != "" {
			return nil, fmt.Errorf("mtckey: %s is not passphrase-protected", path)
		}
		der = block.Bytes
	case encryptedPrivateKeyBlock:
		if passphrase == "" {
			return nil, fmt.Errorf("mtckey: %s is passphrase-protected", path)
		}
		der, err = decryptPKCS8(block, passphrase)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("mtckey: %s has unexpected PEM block type %q", path, block.Type)
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("mtckey: parse private key: %w", err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("mtckey: %s does not hold an Ed25519 key", path)
	}
	return priv, nil
}

func decryptPKCS8(block *pem.Block, passphrase string) ([]byte, error) {
	salt, err := hex.DecodeString(block.Headers["Salt"])
	if err != nil {
		return nil, fmt.Errorf("mtckey: malformed salt header: %w", err)
	}
	nonce, err := hex.DecodeString(block.Headers["Nonce"])
	if err != nil {
		return nil, fmt.Errorf("mtckey: malformed nonce header: %w", err)
	}
	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}
	der, err := gcm.Open(nil, nonce, block.Bytes, nil)
	if err != nil {
		return nil, fmt.Errorf("mtckey: wrong passphrase or corrupt key file: %w", err)
	}
	return der, nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mtckey: init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("mtckey: init gcm: %w", err)
	}
	return gcm, nil
}

// WritePublic PEM-encodes pub as a SubjectPublicKeyInfo and writes it to path.
func WritePublic(path string, pub ed25519.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("mtckey: marshal public key: %w", err)
	}
	block := &pem.Block{Type: publicKeyBlock, Bytes: der}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o644)
}

// ReadPublic reads back a key written by WritePublic.
func ReadPublic(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mtckey: read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyBlock {
		return nil, fmt.Errorf("mtckey: %s is not a PEM public key", path)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("mtckey: parse public key: %w", err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("mtckey: %s does not hold an Ed25519 key", path)
	}
	return pub, nil
}
