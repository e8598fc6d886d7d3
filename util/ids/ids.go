package ids

import (
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// DigestLength of array used to store digests: transaction ids, asset ids,
// header hashes, VRF outputs.
const DigestLength = 32

// SignatureLength of array used to store block signatures.
const SignatureLength = 64

// Digest is a 32-byte identifier. Node operators exchange digests in base58,
// so that's what String renders.
type Digest [DigestLength]byte

// Signature is a 64-byte curve25519 signature used as a block id.
type Signature [SignatureLength]byte

// String returns the Digest in base58.
func (d Digest) String() string {
	return base58.Encode(d[:])
}

// CloneBytes returns a copy of the bytes which represent the digest as a
// byte slice.
func (d *Digest) CloneBytes() []byte {
	newDigest := make([]byte, DigestLength)
	copy(newDigest, d[:])
	return newDigest
}

// SetBytes sets the bytes which represent the digest. An error is returned
// if the number of bytes passed in is not DigestLength.
func (d *Digest) SetBytes(newDigest []byte) error {
	if len(newDigest) != DigestLength {
		return errors.Errorf("invalid digest length of %d, want %d",
			len(newDigest), DigestLength)
	}
	copy(d[:], newDigest)
	return nil
}

// NewDigestFromBytes creates a Digest from the given byte slice.
func NewDigestFromBytes(digestBytes []byte) (*Digest, error) {
	var digest Digest
	err := digest.SetBytes(digestBytes)
	if err != nil {
		return nil, err
	}
	return &digest, nil
}

// NewDigestFromString creates a Digest from a base58 digest string.
func NewDigestFromString(digestString string) (*Digest, error) {
	decoded, err := base58.Decode(digestString)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode digest string %s", digestString)
	}
	return NewDigestFromBytes(decoded)
}

// String returns the Signature in base58.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// CloneBytes returns a copy of the bytes which represent the signature as a
// byte slice.
func (s *Signature) CloneBytes() []byte {
	newSignature := make([]byte, SignatureLength)
	copy(newSignature, s[:])
	return newSignature
}

// SetBytes sets the bytes which represent the signature. An error is
// returned if the number of bytes passed in is not SignatureLength.
func (s *Signature) SetBytes(newSignature []byte) error {
	if len(newSignature) != SignatureLength {
		return errors.Errorf("invalid signature length of %d, want %d",
			len(newSignature), SignatureLength)
	}
	copy(s[:], newSignature)
	return nil
}

// NewSignatureFromBytes creates a Signature from the given byte slice.
func NewSignatureFromBytes(signatureBytes []byte) (*Signature, error) {
	var signature Signature
	err := signature.SetBytes(signatureBytes)
	if err != nil {
		return nil, err
	}
	return &signature, nil
}

// NewSignatureFromString creates a Signature from a base58 signature string.
func NewSignatureFromString(signatureString string) (*Signature, error) {
	decoded, err := base58.Decode(signatureString)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode signature string %s", signatureString)
	}
	return NewSignatureFromBytes(decoded)
}

// FastHash returns the BLAKE2b-256 digest of data. This is the hash ids are
// derived from throughout the node.
func FastHash(data []byte) Digest {
	return blake2b.Sum256(data)
}
