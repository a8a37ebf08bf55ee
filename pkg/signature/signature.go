// Package signature signs and verifies request headers with sr25519 hotkeys.
package signature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
	"github.com/vedhavyas/go-subkey"
)

const (
	SubstrateNetworkId = 42

	DefaultBittensorDir  = "~/.bittensor"
	DefaultWalletColdkey = "default"
)

type Verifier interface {
	// Verify checks if the provided signature is valid for the given message and SS58 address.
	Verify(message, signature, ss58Address string) (bool, error)
}

type Signer interface {
	Sign(message string) (string, error)
	// Hotkey is the SS58 address matching the signing key.
	Hotkey() string
}

// KeypairSigner signs with an in-memory sr25519 keypair.
type KeypairSigner struct {
	keypair *sr25519.Keypair
	hotkey  string
}

// Sr25519Verifier verifies sr25519 signatures against SS58 addresses.
type Sr25519Verifier struct{}

func NewSigner(keypair *sr25519.Keypair) (*KeypairSigner, error) {
	if keypair == nil {
		return nil, fmt.Errorf("keypair cannot be nil")
	}
	return &KeypairSigner{keypair: keypair, hotkey: ToSs58Address(keypair)}, nil
}

func (s *KeypairSigner) Hotkey() string { return s.hotkey }

// Sign returns the signature as a 0x-prefixed hex string.
func (s *KeypairSigner) Sign(message string) (string, error) {
	if s.keypair == nil {
		return "", fmt.Errorf("private key not initialized")
	}

	sig, err := s.keypair.Sign([]byte(message))
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign message")
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	return "0x" + hex.EncodeToString(sig), nil
}

func NewVerifier() *Sr25519Verifier {
	return &Sr25519Verifier{}
}

func (v *Sr25519Verifier) Verify(message, signature, ss58Address string) (bool, error) {
	return Verify(message, signature, ss58Address)
}

func Verify(message, signature, ss58Address string) (bool, error) {
	if !strings.HasPrefix(signature, "0x") {
		return false, fmt.Errorf("signature does not start with '0x'")
	}

	sigBytes, err := hex.DecodeString(signature[2:])
	if err != nil {
		return false, fmt.Errorf("failed to decode signature hex: %w", err)
	}
	if len(sigBytes) != 64 {
		return false, fmt.Errorf("invalid signature length: expected 64 bytes, got %d", len(sigBytes))
	}

	_, pubKeyBytes, err := subkey.SS58Decode(ss58Address)
	if err != nil {
		return false, fmt.Errorf("failed to decode SS58 address to derive public key: %w", err)
	}

	publicKey, err := sr25519.NewPublicKey(pubKeyBytes)
	if err != nil {
		return false, fmt.Errorf("failed to create public key: %w", err)
	}

	return publicKey.Verify([]byte(message), sigBytes)
}

func ToSs58Address(keypair *sr25519.Keypair) string {
	return subkey.SS58Encode(keypair.Public().Encode(), SubstrateNetworkId)
}
