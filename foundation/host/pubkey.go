package host

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// PubkeySize is the number of bytes in an identity.
const PubkeySize = 32

// Pubkey is the opaque identity of an account, a contributor or a program.
type Pubkey [PubkeySize]byte

// ToPubkey converts a 0x prefixed hex string into an identity.
func ToPubkey(hex string) (Pubkey, error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return Pubkey{}, err
	}

	if len(b) != PubkeySize {
		return Pubkey{}, errors.New("invalid pubkey length")
	}

	var pk Pubkey
	copy(pk[:], b)
	return pk, nil
}

// PublicKeyToPubkey derives an identity from a secp256k1 public key as the
// Keccak-256 hash of the uncompressed point.
func PublicKeyToPubkey(pk ecdsa.PublicKey) Pubkey {
	raw := crypto.FromECDSAPub(&pk)

	var key Pubkey
	copy(key[:], crypto.Keccak256(raw[1:]))
	return key
}

// NamedPubkey derives a stable identity from a name. It is used by tooling
// that needs readable identities without key material.
func NamedPubkey(name string) Pubkey {
	return Pubkey(crypto.Keccak256Hash([]byte(name)))
}

// String returns the 0x prefixed hex form of the identity.
func (pk Pubkey) String() string {
	return hexutil.Encode(pk[:])
}

// Compare orders identities byte-wise.
func (pk Pubkey) Compare(other Pubkey) int {
	return bytes.Compare(pk[:], other[:])
}

// IsZero reports whether every byte of the identity is zero.
func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

// =============================================================================

// KeyFactory hands out distinct identities from a counter. Each test gets
// its own factory so no state is shared between tests.
type KeyFactory struct {
	next uint64
}

// NewKeyFactory constructs a factory whose first identity carries seed.
func NewKeyFactory(seed uint64) *KeyFactory {
	return &KeyFactory{next: seed}
}

// NewUnique returns an identity that no earlier call on this factory
// produced.
func (kf *KeyFactory) NewUnique() Pubkey {
	var pk Pubkey
	binary.LittleEndian.PutUint64(pk[:8], kf.next)
	kf.next++
	return pk
}
