package state

import "github.com/pkg/errors"

// AddressIDLength of array used to store account address ids. Full addresses
// are resolved to their compact ids by an upper layer; the storage only ever
// sees the ids.
const AddressIDLength = 8

// PublicKeyLength of array used to store account and issuer public keys.
const PublicKeyLength = 32

// AddressID is a compact account identifier used in key suffixes.
type AddressID [AddressIDLength]byte

// PublicKey is a curve25519 public key.
type PublicKey [PublicKeyLength]byte

// NewAddressIDFromBytes creates an AddressID from the given byte slice.
func NewAddressIDFromBytes(addressIDBytes []byte) (*AddressID, error) {
	if len(addressIDBytes) != AddressIDLength {
		return nil, errors.Errorf("invalid address id length of %d, want %d",
			len(addressIDBytes), AddressIDLength)
	}
	var addr AddressID
	copy(addr[:], addressIDBytes)
	return &addr, nil
}

// NewPublicKeyFromBytes creates a PublicKey from the given byte slice.
func NewPublicKeyFromBytes(publicKeyBytes []byte) (*PublicKey, error) {
	if len(publicKeyBytes) != PublicKeyLength {
		return nil, errors.Errorf("invalid public key length of %d, want %d",
			len(publicKeyBytes), PublicKeyLength)
	}
	var publicKey PublicKey
	copy(publicKey[:], publicKeyBytes)
	return &publicKey, nil
}
