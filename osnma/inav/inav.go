// The inav package contains types and functions for handling raw Galileo
// I/NAV navigation words: satellite numbers, signal bands, the word type
// field and the dummy-message filter.
package inav

import (
	"errors"
	"fmt"
)

// NumSvns is the number of satellites in the constellation.  Per-satellite
// state is kept in arrays of this size, indexed by SVN - 1.
const NumSvns = 36

// WordLengthBytes is the length of a raw I/NAV word.  One word is
// broadcast per satellite per band per odd/even page pair.
const WordLengthBytes = 16

// OsnmaLengthBytes is the length of the OSNMA data field that rides along
// with an I/NAV word (40 bits).
const OsnmaLengthBytes = 5

// DummyWordType is the word type of an I/NAV Dummy Message.  Dummy
// Messages carry no authenticatable data - the OSNMA field in them may not
// be all zeros but is invalid and must be discarded.
const DummyWordType = 63

// Svn is a satellite vehicle number, in the range 1 to NumSvns.
type Svn int

// NewSvn checks the range of a raw satellite number and returns it as an Svn.
func NewSvn(n uint32) (Svn, error) {
	if n < 1 || n > NumSvns {
		return 0, fmt.Errorf("SVN %d out of range 1-%d", n, NumSvns)
	}
	return Svn(n), nil
}

// Index returns the satellite's slot in a per-satellite array.
func (svn Svn) Index() int {
	return int(svn) - 1
}

// String returns the usual display form of a Galileo SVN, for example "E05".
func (svn Svn) String() string {
	return fmt.Sprintf("E%02d", int(svn))
}

// Band identifies the signal band that carried an I/NAV word.
type Band int

const (
	// BandE1B is the E1B signal (signal ID 1 in monitoring feeds).
	BandE1B Band = iota
	// BandE5B is the E5b signal (signal ID 5 in monitoring feeds).
	BandE5B
)

// String returns the name of the band.
func (band Band) String() string {
	switch band {
	case BandE1B:
		return "E1B"
	case BandE5B:
		return "E5B"
	default:
		return fmt.Sprintf("band %d", int(band))
	}
}

// BandFromSigid maps a monitoring-feed signal ID to an I/NAV band.  Only
// E1B and E5b carry I/NAV words; any other signal ID is an error.
func BandFromSigid(sigid uint32) (Band, error) {
	switch sigid {
	case 1:
		return BandE1B, nil
	case 5:
		return BandE5B, nil
	default:
		return 0, fmt.Errorf("sigid %d does not carry INAV", sigid)
	}
}

// WordType returns the word type - the top six bits of the first byte of
// the word.
func WordType(word []byte) (uint, error) {
	if len(word) == 0 {
		return 0, errors.New("empty INAV word")
	}
	return uint(word[0] >> 2), nil
}

// IsDummy reports whether the word is a Dummy Message.  Dummy words must
// not be fed to the authentication engine.  (Alert Pages should be
// discarded too, but the page type bit is not present in monitoring feeds,
// so they cannot be told apart here.)
func IsDummy(word []byte) bool {
	wordType, err := WordType(word)
	if err != nil {
		return false
	}
	return wordType == DummyWordType
}
