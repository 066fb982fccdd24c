// The gst package handles Galileo System Time (GST) - a week number and a
// time of week in seconds - and the 30-second subframes that the OSNMA
// protocol hangs its key chain on.  Everything here is plain integer
// arithmetic; the only subtlety is folding an overlong time of week back
// into the week number and rolling the week back when stepping over the
// start of a week.
package gst

import "fmt"

// SecondsInWeek is the number of seconds in a GST week.
const SecondsInWeek = 7 * 24 * 3600

// SecondsInSubframe is the length of a subframe.  Subframes are aligned,
// so a subframe boundary is a time of week that is a multiple of this.
const SecondsInSubframe = 30

// Gst is a Galileo System Time - a week number and a time of week in
// seconds.  The time of week of a properly formed Gst is always in the
// range [0, SecondsInWeek).  Use New to get that guarantee.
type Gst struct {
	// Wn is the week number.  It's broadcast as a 12-bit value.
	Wn uint16
	// Tow is the time of week in seconds.
	Tow uint32
}

// New creates a Gst, folding any excess time of week into the week
// number.  Monitoring feeds occasionally report a time of week of 604801,
// one second into the next week.
func New(wn uint16, tow uint32) Gst {
	return Gst{
		Wn:  wn + uint16(tow/SecondsInWeek),
		Tow: tow % SecondsInWeek,
	}
}

// Subframe returns the boundary of the subframe containing g.
func (g Gst) Subframe() Gst {
	return Gst{Wn: g.Wn, Tow: g.Tow - g.Tow%SecondsInSubframe}
}

// PreviousSubframe returns the subframe boundary 30 seconds before g's
// subframe, rolling back into the previous week if g's subframe starts
// the week.
func (g Gst) PreviousSubframe() Gst {
	subframe := g.Subframe()
	if subframe.Tow == 0 {
		return Gst{Wn: subframe.Wn - 1, Tow: SecondsInWeek - SecondsInSubframe}
	}
	return Gst{Wn: subframe.Wn, Tow: subframe.Tow - SecondsInSubframe}
}

// Before reports whether g is strictly earlier than other.
func (g Gst) Before(other Gst) bool {
	if g.Wn != other.Wn {
		return g.Wn < other.Wn
	}
	return g.Tow < other.Tow
}

// String returns a readable version of the time, for example "WN 1176 TOW 120930".
func (g Gst) String() string {
	return fmt.Sprintf("WN %d TOW %d", g.Wn, g.Tow)
}
