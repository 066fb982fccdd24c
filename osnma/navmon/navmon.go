// The navmon package reads a navigation monitoring feed - the packet
// stream produced by a receiver network such as Galmon.  The feed is one
// JSON object per line.  A packet may carry a Galileo I/NAV fragment: the
// raw navigation word for one satellite and band, plus the OSNMA bytes
// that rode along with it.  A fragment may also carry a CRC-24Q checksum
// of the word; when present it is checked and a damaged packet is
// reported as a frame error, leaving the stream usable.
package navmon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goblimey/go-crc24q/crc24q"
)

// Packet is one message from the monitoring feed.  Inav is nil when the
// message carries no Galileo I/NAV data (the feed also carries other
// constellations and observation types, which this software ignores).
type Packet struct {
	SourceID uint32        `json:"sourceID,omitempty"`
	Inav     *InavFragment `json:"gi,omitempty"`
}

// InavFragment is the Galileo I/NAV part of a packet.  Wn and Tow are the
// transmission time as reported by the receiver - the Tow may overrun the
// week by a second or so and must be folded before use.  Sigid is nil
// when the receiver did not report which signal carried the word.
type InavFragment struct {
	Wn    uint32  `json:"gnssWN"`
	Tow   uint32  `json:"gnssTOW"`
	Svn   uint32  `json:"gnssSV"`
	Sigid *uint32 `json:"sigid,omitempty"`
	Word  []byte  `json:"contents"`
	Osnma []byte  `json:"reserved1,omitempty"`
	Crc   *uint32 `json:"crc,omitempty"`
}

// FrameError reports a packet that could not be used - malformed JSON or
// a failed checksum.  The stream itself is still good; the caller should
// log the error and read the next packet.
type FrameError struct {
	Line   int
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Reader reads packets from a monitoring feed.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader on the given feed.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	// A packet with a full INAV word and OSNMA data is well under 1 KB,
	// but leave room for feeds that bundle extra observations.
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &Reader{scanner: scanner}
}

// ReadPacket returns the next packet from the feed.  It returns io.EOF at
// the end of the feed and a *FrameError for a damaged packet.  After a
// *FrameError the reader is still usable.
func (r *Reader) ReadPacket() (*Packet, error) {
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var packet Packet
		if err := json.Unmarshal(line, &packet); err != nil {
			return nil, &FrameError{Line: r.line, Reason: err.Error()}
		}

		if checkError := checkFragment(packet.Inav, r.line); checkError != nil {
			return nil, checkError
		}

		return &packet, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// checkFragment verifies the checksum of an INAV fragment, if it has one.
func checkFragment(fragment *InavFragment, line int) *FrameError {
	if fragment == nil || fragment.Crc == nil {
		return nil
	}
	calculated := crc24q.Hash(fragment.Word)
	if calculated != *fragment.Crc {
		reason := fmt.Sprintf("CRC check failed on INAV word - given %06x, calculated %06x",
			*fragment.Crc, calculated)
		return &FrameError{Line: line, Reason: reason}
	}
	return nil
}
