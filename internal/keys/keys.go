// Package keys manages the Ed25519 signing identity used to certify
// artifacts.
//
// A KeyStore is constructed once at process start and shared by reference.
// In production mode both keys must be supplied as base64 DER (SPKI public,
// PKCS#8 private); anything else is a fatal configuration error. In test
// mode a missing pair is replaced by a freshly generated one that stays
// cached on the store until Reset is called.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Mode selects how a KeyStore obtains its key pair.
type Mode string

const (
	ModeProduction Mode = "production"
	ModeTest       Mode = "test"
)

var (
	// ErrMissingKeys is returned in production mode when either key is absent.
	ErrMissingKeys = errors.New("keys: signing keys not configured")
	// ErrMalformedKey is returned when key material cannot be decoded.
	ErrMalformedKey = errors.New("keys: malformed key material")
	// ErrKeyMismatch is returned when the public key does not belong to the private key.
	ErrKeyMismatch = errors.New("keys: public key does not match private key")
	// ErrUnknownMode is returned for any mode other than production or test.
	ErrUnknownMode = errors.New("keys: unknown mode")
)

// Config carries the raw key material and the explicit mode flag.
type Config struct {
	Mode       Mode
	PublicKey  string // base64 DER SPKI
	PrivateKey string // base64 DER PKCS#8
}

// KeyPair is a loaded Ed25519 identity.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// KeyStore loads a key pair once and serves signing and verification.
// It is safe for concurrent use.
type KeyStore struct {
	cfg Config

	mu   sync.RWMutex
	pair *KeyPair
}

// NewKeyStore returns a store for cfg. Keys are not read until Load.
func NewKeyStore(cfg Config) *KeyStore {
	return &KeyStore{cfg: cfg}
}

// Mode reports the configured mode.
func (k *KeyStore) Mode() Mode { return k.cfg.Mode }

// Load returns the cached pair, loading it on first use. Concurrent first
// calls converge on a single pair.
func (k *KeyStore) Load() (*KeyPair, error) {
	k.mu.RLock()
	p := k.pair
	k.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pair != nil {
		return k.pair, nil
	}
	p, err := k.load()
	if err != nil {
		return nil, err
	}
	k.pair = p
	return p, nil
}

func (k *KeyStore) load() (*KeyPair, error) {
	pub := strings.TrimSpace(k.cfg.PublicKey)
	priv := strings.TrimSpace(k.cfg.PrivateKey)

	switch k.cfg.Mode {
	case ModeProduction:
		if pub == "" || priv == "" {
			return nil, ErrMissingKeys
		}
		return ParsePair(pub, priv)
	case ModeTest:
		if pub != "" && priv != "" {
			return ParsePair(pub, priv)
		}
		pk, sk, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("keys: generate: %w", err)
		}
		return &KeyPair{Public: pk, Private: sk}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, k.cfg.Mode)
	}
}

// Reset drops the cached pair so the next Load starts over.
func (k *KeyStore) Reset() {
	k.mu.Lock()
	k.pair = nil
	k.mu.Unlock()
}

// Sign signs msg and returns the base64 encoded 64-byte signature.
func (k *KeyStore) Sign(msg []byte) (string, error) {
	p, err := k.Load()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ed25519.Sign(p.Private, msg)), nil
}

// Verify reports whether sigB64 is a valid signature of msg under the
// store's public key. Load failures and bad encodings report false.
func (k *KeyStore) Verify(msg []byte, sigB64 string) bool {
	p, err := k.Load()
	if err != nil {
		return false
	}
	return VerifyWith(p.Public, msg, sigB64)
}

// PublicKeyBase64 returns the public key as base64 DER SPKI.
func (k *KeyStore) PublicKeyBase64() (string, error) {
	p, err := k.Load()
	if err != nil {
		return "", err
	}
	return EncodePublicKey(p.Public)
}

// VerifyWith checks a base64 signature against an explicit public key.
func VerifyWith(pub ed25519.PublicKey, msg []byte, sigB64 string) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sigB64))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}

// ParsePair decodes both keys and checks that they belong together.
func ParsePair(pubB64, privB64 string) (*KeyPair, error) {
	pub, err := ParsePublicKey(pubB64)
	if err != nil {
		return nil, err
	}
	priv, err := ParsePrivateKey(privB64)
	if err != nil {
		return nil, err
	}
	derived, _ := priv.Public().(ed25519.PublicKey)
	if !derived.Equal(pub) {
		return nil, ErrKeyMismatch
	}
	return &KeyPair{Public: pub, Private: priv}, nil
}

// ParsePublicKey decodes a base64 DER SPKI Ed25519 public key.
func ParsePublicKey(b64 string) (ed25519.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("%w: public key base64: %v", ErrMalformedKey, err)
	}
	k, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: public key der: %v", ErrMalformedKey, err)
	}
	pub, ok := k.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, not ed25519", ErrMalformedKey, k)
	}
	return pub, nil
}

// ParsePrivateKey decodes a base64 DER PKCS#8 Ed25519 private key.
func ParsePrivateKey(b64 string) (ed25519.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("%w: private key base64: %v", ErrMalformedKey, err)
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: private key der: %v", ErrMalformedKey, err)
	}
	priv, ok := k.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is %T, not ed25519", ErrMalformedKey, k)
	}
	return priv, nil
}

// EncodePublicKey renders pub as base64 DER SPKI.
func EncodePublicKey(pub ed25519.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// EncodePrivateKey renders priv as base64 DER PKCS#8.
func EncodePrivateKey(priv ed25519.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// Generate creates a fresh pair and returns it in the configuration
// encoding (base64 DER).
func Generate() (pubB64, privB64 string, err error) {
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	if pubB64, err = EncodePublicKey(pk); err != nil {
		return "", "", err
	}
	if privB64, err = EncodePrivateKey(sk); err != nil {
		return "", "", err
	}
	return pubB64, privB64, nil
}
