package gst

// TowCorrector fixes a known artifact in monitoring feeds.  Often the E1B
// word 16 starting at TOW = 29 mod 30 carries the TOW of the previous word
// 16 in the subframe, which starts at TOW = 15 mod 30.  The condition is
// detected by looking at the last TOW mod 30 that was seen.  The corrector
// keeps that value, so a single corrector must see every word in the
// stream, in order.
type TowCorrector struct {
	lastTowMod30 uint32
}

// LastTowMod30 returns the TOW mod 30 of the last word offered to Correct.
func (c *TowCorrector) LastTowMod30() uint32 {
	return c.lastTowMod30
}

// Correct takes the time of week of an incoming word, already folded into
// [0, SecondsInWeek), and returns it with the artifact corrected, plus a
// flag saying whether a correction was applied.  The correction adds
// 29 - 15 = 14 seconds, so it can never roll the week over.
func (c *TowCorrector) Correct(tow uint32) (uint32, bool) {
	applied := false
	if tow%30 == 15 && c.lastTowMod30 >= 19 {
		tow += 29 - 15
		applied = true
	}
	c.lastTowMod30 = tow % 30
	return tow, applied
}
