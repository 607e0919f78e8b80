// Package checkin builds and verifies personal-sign attestations that a holder
// presented themselves at an event.
package checkin

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mahimasingh04/OpenEvent/internal/domain"
)

// SignatureLength is r || s || v
const SignatureLength = 65

// ErrMalformedSignature is wrapped into domain.ErrInvalidSignature
var ErrMalformedSignature = errors.New("malformed signature")

// ParseAddress validates a 20-byte hex address and returns it with its canonical account string
func ParseAddress(s string) (common.Address, string, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, "", domain.ErrInvalidAccount
	}
	addr := common.HexToAddress(s)
	return addr, domain.NormalizeAccount(addr.Hex()), nil
}

// Message packs uint256(eventID) || address(holder) || uint256(timestamp) and hashes it with keccak256
func Message(eventID uint64, holder common.Address, timestamp uint64) []byte {
	buf := make([]byte, 0, 32+common.AddressLength+32)
	buf = append(buf, uint256(eventID)...)
	buf = append(buf, holder.Bytes()...)
	buf = append(buf, uint256(timestamp)...)
	return crypto.Keccak256(buf)
}

// Digest is the personal-sign hash of the message the signer actually signs
func Digest(eventID uint64, holder common.Address, timestamp uint64) []byte {
	return accounts.TextHash(Message(eventID, holder, timestamp))
}

func uint256(v uint64) []byte {
	out := make([]byte, 32)
	binary.BigEndian.PutUint64(out[24:], v)
	return out
}

// Recover returns the address that produced sig over the attestation
func Recover(eventID uint64, holder common.Address, timestamp uint64, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, ErrMalformedSignature
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(normalized[64], r, s, true) {
		return common.Address{}, ErrMalformedSignature
	}

	pub, err := crypto.SigToPub(Digest(eventID, holder, timestamp), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces a personal-sign attestation with v in {27, 28}
func Sign(eventID uint64, holder common.Address, timestamp uint64, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(Digest(eventID, holder, timestamp), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign attestation: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// Verifier checks attestations against the configured signer
type Verifier struct {
	signer     common.Address
	configured bool
}

// NewVerifier creates a verifier. An empty signer yields a verifier that rejects everything.
func NewVerifier(signer string) (*Verifier, error) {
	if strings.TrimSpace(signer) == "" {
		return &Verifier{}, nil
	}
	addr, _, err := ParseAddress(signer)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in signer %q: %w", signer, err)
	}
	return &Verifier{signer: addr, configured: true}, nil
}

// Signer returns the configured signer address
func (v *Verifier) Signer() common.Address {
	return v.signer
}

// Verify accepts sig only if it recovers to the configured signer
func (v *Verifier) Verify(eventID uint64, holder common.Address, timestamp uint64, sig []byte) error {
	if !v.configured {
		return domain.ErrCheckInNotConfigured
	}
	got, err := Recover(eventID, holder, timestamp, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	if got != v.signer {
		return domain.ErrInvalidSignature
	}
	return nil
}
