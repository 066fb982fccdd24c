// The trust package validates and loads the trust anchors that the
// monitor needs before it can authenticate anything: the Merkle tree
// root of the public key set, or a single ECDSA public key, or both.
// Keys come either as a P-256 key in a PEM file or as a P-521 key given
// as hex-encoded SEC1 point bytes, each tied to a public key ID.
package trust

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// MerkleRootBytes is the length of the Merkle tree root, a SHA-256
// digest.
const MerkleRootBytes = 32

// Config carries the trust anchor settings as given on the command
// line, before validation.  Pkid is -1 when not supplied.
type Config struct {
	MerkleRoot  string // hex
	PubkeyPath  string // path of a PEM file holding a P-256 key
	PubkeyP521  string // hex SEC1 point bytes of a P-521 key
	Pkid        int
	SlowMacOnly bool
}

// PublicKey is a validated ECDSA public key with the ID that the OSNMA
// DSM headers refer to it by.
type PublicKey struct {
	Key  *ecdsa.PublicKey
	Pkid uint8
}

// Anchor is the validated trust material.  At least one of MerkleRoot
// and PublicKey is set.
type Anchor struct {
	MerkleRoot  *[MerkleRootBytes]byte
	PublicKey   *PublicKey
	SlowMacOnly bool
}

// Load validates the configuration and loads the key material.  Any
// violation is an error and the caller is expected to treat it as
// fatal.
func Load(config *Config) (*Anchor, error) {

	if config.MerkleRoot == "" && config.PubkeyPath == "" && config.PubkeyP521 == "" {
		return nil, errors.New("at least either the Merkle tree root or the public key must be specified")
	}

	if config.PubkeyPath != "" && config.PubkeyP521 != "" {
		return nil, errors.New("the pubkey and pubkey-p521 settings are mutually exclusive")
	}

	if config.PubkeyPath != "" && config.Pkid < 0 {
		return nil, errors.New("the pubkey and pkid settings need to be both specified together")
	}

	if config.PubkeyP521 != "" && config.Pkid < 0 {
		return nil, errors.New("the pubkey-p521 and pkid settings need to be both specified together")
	}

	if config.Pkid >= 0 && config.PubkeyPath == "" && config.PubkeyP521 == "" {
		return nil, errors.New("the pkid setting needs to be used together with pubkey or pubkey-p521")
	}

	if config.Pkid > 255 {
		return nil, fmt.Errorf("pkid %d out of range 0-255", config.Pkid)
	}

	anchor := Anchor{SlowMacOnly: config.SlowMacOnly}

	if config.PubkeyPath != "" {
		key, keyError := loadPubkey(config.PubkeyPath, uint8(config.Pkid))
		if keyError != nil {
			return nil, keyError
		}
		anchor.PublicKey = key
	} else if config.PubkeyP521 != "" {
		key, keyError := loadPubkeyP521(config.PubkeyP521, uint8(config.Pkid))
		if keyError != nil {
			return nil, keyError
		}
		anchor.PublicKey = key
	}

	if config.MerkleRoot != "" {
		rootBytes, decodeError := hex.DecodeString(config.MerkleRoot)
		if decodeError != nil {
			return nil, fmt.Errorf("failed to parse Merkle tree root: %v", decodeError)
		}
		if len(rootBytes) != MerkleRootBytes {
			return nil, errors.New("the Merkle tree root has a wrong length")
		}
		var root [MerkleRootBytes]byte
		copy(root[:], rootBytes)
		anchor.MerkleRoot = &root
	}

	return &anchor, nil
}

// parsePKIX parses DER-encoded PKIX bytes as an ECDSA public key.
func parsePKIX(der []byte) (*ecdsa.PublicKey, error) {
	parsed, parseError := x509.ParsePKIXPublicKey(der)
	if parseError != nil {
		return nil, parseError
	}
	key, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("not an ECDSA key")
	}
	return key, nil
}

// loadPubkey reads a P-256 public key from a PEM file.
func loadPubkey(path string, pkid uint8) (*PublicKey, error) {

	pemBytes, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf("cannot read public key file %s: %v", path, readError)
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("%s does not contain a PEM public key", path)
	}

	parsed, parseError := parsePKIX(block.Bytes)
	if parseError != nil {
		return nil, fmt.Errorf("cannot parse public key in %s: %v", path, parseError)
	}

	if parsed.Curve != elliptic.P256() {
		return nil, fmt.Errorf("public key in %s is not on the P-256 curve", path)
	}

	return &PublicKey{Key: parsed, Pkid: pkid}, nil
}

// loadPubkeyP521 decodes a P-521 public key from SEC1 point bytes given
// in hex.
func loadPubkeyP521(hexPoint string, pkid uint8) (*PublicKey, error) {

	pointBytes, decodeError := hex.DecodeString(hexPoint)
	if decodeError != nil {
		return nil, fmt.Errorf("failed to parse P-521 public key: %v", decodeError)
	}

	x, y := elliptic.Unmarshal(elliptic.P521(), pointBytes)
	if x == nil {
		return nil, errors.New("the P-521 public key is not a valid SEC1 point")
	}

	key := ecdsa.PublicKey{Curve: elliptic.P521(), X: x, Y: y}
	return &PublicKey{Key: &key, Pkid: pkid}, nil
}
