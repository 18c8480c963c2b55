package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"

	DefaultHashAlg = "sha256"
)

var ErrUntrustedKey = errors.New("keys: signature key is not trusted")

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// Signature is a detached signature over hash(message).
type Signature struct {
	Alg     string `json:"alg"`
	HashAlg string `json:"hashAlg"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// Signer holds one node private key.
type Signer struct {
	alg     string
	hashAlg string
	ed      ed25519.PrivateKey
	dil     *mode3.PrivateKey
	pub     string
}

// NewSigner builds a signer for alg from a 32-byte seed. An empty hashAlg
// selects DefaultHashAlg.
func NewSigner(alg, hashAlg string, seed []byte) (*Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes", SeedSize)
	}
	if hashAlg == "" {
		hashAlg = DefaultHashAlg
	}
	if _, err := digestFor(hashAlg, nil); err != nil {
		return nil, err
	}

	s := &Signer{alg: alg, hashAlg: hashAlg}
	switch alg {
	case AlgEd25519:
		s.ed = ed25519.NewKeyFromSeed(seed)
		s.pub = AlgEd25519 + ":" + base64.StdEncoding.EncodeToString(s.ed.Public().(ed25519.PublicKey))
	case AlgDilithium3:
		var buf [mode3.SeedSize]byte
		copy(buf[:], seed)
		pk, sk := mode3.NewKeyFromSeed(&buf)
		raw, err := pk.MarshalBinary()
		if err != nil {
			return nil, err
		}
		s.dil = sk
		s.pub = AlgDilithium3 + ":" + base64.StdEncoding.EncodeToString(raw)
	default:
		return nil, fmt.Errorf("unsupported signature algorithm: %q", alg)
	}
	return s, nil
}

// PublicKey returns the formatted public key, e.g. "ed25519:<base64>".
func (s *Signer) PublicKey() string { return s.pub }

func (s *Signer) Sign(message []byte) (Signature, error) {
	digest, err := digestFor(s.hashAlg, message)
	if err != nil {
		return Signature{}, err
	}
	var sig []byte
	switch s.alg {
	case AlgEd25519:
		sig = ed25519.Sign(s.ed, digest)
	case AlgDilithium3:
		sig = make([]byte, mode3.SignatureSize)
		mode3.SignTo(s.dil, digest, sig)
	}
	return Signature{
		Alg:     s.alg,
		HashAlg: s.hashAlg,
		Key:     s.pub,
		Value:   base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks sig over message. When trustedKey is non-empty the signature
// must also have been made by that key.
func Verify(message []byte, sig Signature, trustedKey string) error {
	if trustedKey != "" && strings.TrimSpace(trustedKey) != sig.Key {
		return ErrUntrustedKey
	}
	alg, b64, ok := strings.Cut(sig.Key, ":")
	if !ok || alg != sig.Alg {
		return fmt.Errorf("keys: malformed key %q", sig.Key)
	}
	pub, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("keys: decode key: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(sig.Value)
	if err != nil {
		return fmt.Errorf("keys: decode signature: %w", err)
	}
	digest, err := digestFor(sig.HashAlg, message)
	if err != nil {
		return err
	}

	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, raw) {
			return errors.New("keys: signature did not verify")
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return fmt.Errorf("keys: dilithium3 key: %w", err)
		}
		if !mode3.Verify(&pk, digest, raw) {
			return errors.New("keys: signature did not verify")
		}
	default:
		return fmt.Errorf("unsupported signature algorithm: %q", alg)
	}
	return nil
}
