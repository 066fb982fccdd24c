// The tesla package implements the TESLA one-way key chain used by OSNMA.
// Keys in the chain are anchored to 30-second subframes.  Applying the
// one-way function to the key for subframe N produces the key for subframe
// N-1, so a key disclosed later in a broadcast can be walked backwards and
// compared against a key that has already been trusted.  A forger would
// have to invert the hash to extend the chain the other way.
package tesla

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/goblimey/go-osnma/osnma/gst"
)

// MaxKeyBytes is the storage size of a chain key.  The protocol allows key
// sizes up to 256 bits.  A Key carries its real length separately, so keys
// are fixed-size values and can be compared with ==.
const MaxKeyBytes = 32

// HashFunction selects the hash used by the one-way function.  The value
// is broadcast in the chain parameters, and one of the broadcast code
// points is reserved.
type HashFunction int

const (
	// HashSHA256 selects SHA-256.
	HashSHA256 HashFunction = iota
	// HashSHA3_256 selects SHA3-256.
	HashSHA3_256
	// HashReserved is the reserved code point.  A chain carrying it is
	// corrupt and no key may be derived from it.
	HashReserved
)

// String returns the name of the hash function.
func (h HashFunction) String() string {
	switch h {
	case HashSHA256:
		return "SHA-256"
	case HashSHA3_256:
		return "SHA3-256"
	case HashReserved:
		return "reserved"
	default:
		return fmt.Sprintf("hash function %d", int(h))
	}
}

// ChainParameters are the fixed parameters of a TESLA chain: the hash
// function and the alpha salt.  Only the low 48 bits of Alpha are used.
type ChainParameters struct {
	Hash  HashFunction
	Alpha uint64
}

// Key is a TESLA chain key anchored at a subframe boundary.  Key is a
// fixed-size value type: comparing two keys with == compares the full
// buffer, the declared bit length and the anchor.
type Key struct {
	data        [MaxKeyBytes]byte
	bits        uint
	gstSubframe gst.Gst
}

// checkAnchor panics if the anchor is not a subframe boundary.  Keys only
// ever originate at subframe boundaries, so a misaligned anchor is a
// programming error, not bad input.
func checkAnchor(g gst.Gst) {
	if g.Tow%gst.SecondsInSubframe != 0 {
		panic(fmt.Sprintf("tesla: key anchor %v is not a subframe boundary", g))
	}
}

// FromSlice builds a key from its bytes and its anchor subframe.
func FromSlice(b []byte, g gst.Gst) Key {
	checkAnchor(g)
	if len(b) > MaxKeyBytes {
		panic(fmt.Sprintf("tesla: key of %d bytes exceeds %d", len(b), MaxKeyBytes))
	}
	var key Key
	copy(key.data[:], b)
	key.bits = uint(len(b)) * 8
	key.gstSubframe = g
	return key
}

// GstSubframe returns the subframe boundary the key is anchored at.
func (key Key) GstSubframe() gst.Gst {
	return key.gstSubframe
}

// BitLen returns the declared length of the key in bits, always a
// multiple of 8.
func (key Key) BitLen() uint {
	return key.bits
}

// Bytes returns a copy of the key material.
func (key Key) Bytes() []byte {
	b := make([]byte, key.bits/8)
	copy(b, key.data[:key.bits/8])
	return b
}

// String returns the key in hex together with its anchor.
func (key Key) String() string {
	return fmt.Sprintf("%s at %v",
		hex.EncodeToString(key.data[:key.bits/8]), key.gstSubframe)
}

// OneWayFunction derives the key anchored one subframe earlier.  The hash
// input is the key bytes, then four bytes holding the previous subframe's
// week number (12 bits) and time of week (20 bits) big-endian, then the
// low 48 bits of alpha, big-endian.  The digest is truncated to the key
// length.  Deriving with the reserved hash function is an error: it means
// the chain parameters are corrupt, and a silently mis-derived key would
// be worse than no key.
func (key Key) OneWayFunction(params ChainParameters) (Key, error) {
	size := key.bits / 8
	previous := key.gstSubframe.PreviousSubframe()

	buffer := make([]byte, 0, size+10)
	buffer = append(buffer, key.data[:size]...)
	var gstField [4]byte
	binary.BigEndian.PutUint32(gstField[:], uint32(previous.Wn)<<20|previous.Tow)
	buffer = append(buffer, gstField[:]...)
	var alphaField [8]byte
	binary.BigEndian.PutUint64(alphaField[:], params.Alpha)
	buffer = append(buffer, alphaField[2:]...)

	var digest [32]byte
	switch params.Hash {
	case HashSHA256:
		digest = sha256.Sum256(buffer)
	case HashSHA3_256:
		digest = sha3.Sum256(buffer)
	case HashReserved:
		return Key{}, errors.New("chain parameters use the reserved hash function")
	default:
		return Key{}, fmt.Errorf("unknown hash function %d", int(params.Hash))
	}

	var derived Key
	copy(derived.data[:size], digest[:size])
	derived.bits = key.bits
	derived.gstSubframe = previous
	return derived, nil
}

// ValidateAgainst walks the key backwards with the one-way function until
// it reaches the anchor's subframe and reports whether it matches the
// anchor.  The anchor must be a key that has already been trusted (the
// chain root, or any key previously validated against it).  A key anchored
// at the same subframe as the anchor is compared directly.
func (key Key) ValidateAgainst(anchor Key, params ChainParameters) (bool, error) {
	if key.gstSubframe.Before(anchor.gstSubframe) {
		return false, fmt.Errorf(
			"key at %v is older than the trusted anchor at %v",
			key.gstSubframe, anchor.gstSubframe)
	}
	derived := key
	for anchor.gstSubframe.Before(derived.gstSubframe) {
		var derivationError error
		derived, derivationError = derived.OneWayFunction(params)
		if derivationError != nil {
			return false, derivationError
		}
	}
	return derived == anchor, nil
}
