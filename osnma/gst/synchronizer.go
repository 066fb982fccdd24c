package gst

// Synchronizer keeps the latest subframe boundary seen so far and screens
// incoming words against it.  The watermark is global, not per satellite:
// all satellites broadcast on the same GST timeline, so a single value is
// enough to reject words that arrive for a subframe that has already been
// superseded.
type Synchronizer struct {
	current Gst
	seen    bool
}

// Accept screens the time of an incoming word.  If the word belongs to a
// subframe earlier than the watermark it is rejected and nothing changes.
// Otherwise the word is accepted and the watermark moves up to the word's
// subframe (staying put when the subframes are equal).
func (s *Synchronizer) Accept(g Gst) bool {
	subframe := g.Subframe()
	if s.seen && subframe.Before(s.current) {
		return false
	}
	s.current = subframe
	s.seen = true
	return true
}

// CurrentSubframe returns the watermark.  The second value is false until
// the first word has been accepted.
func (s *Synchronizer) CurrentSubframe() (Gst, bool) {
	return s.current, s.seen
}
