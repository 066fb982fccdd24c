// The ced package decodes named fields from an authenticated CED and
// health status block (clock, ephemeris and status data for one
// satellite).  The block layout is a fixed table of named bit ranges; the
// table is data, and one generic routine extracts every field, so the
// layout lives in exactly one place.
package ced

import (
	"fmt"
	"strings"

	"github.com/goblimey/go-osnma/osnma/utils"
)

// BlockLengthBytes is the length of a materialised CED and status block.
const BlockLengthBytes = 69

// MaxFieldBits is the widest field the extractor supports.  No field in
// the block layout is wider than this, so every value fits a uint32.
const MaxFieldBits = 32

// FieldSpec names a bit range within the block.  Start and End are
// inclusive bit offsets, most significant bit first: bit i lives in byte
// i/8 at position 7 - (i mod 8).
type FieldSpec struct {
	Name  string
	Start uint
	End   uint
}

// CedAndStatusFields is the layout of the CED and status block: the
// ephemeris Keplerian elements, the clock correction terms, the
// ionospheric coefficients and the health flags.
var CedAndStatusFields = []FieldSpec{
	{"T0E", 11, 24},
	{"M0", 25, 56},
	{"E", 57, 88},
	{"AQRTA", 89, 120},
	{"OMEGA0", 131, 162},
	{"I0", 163, 194},
	{"OMEGA", 195, 226},
	{"IDOT", 227, 240},
	{"OMEGADOT", 251, 274},
	{"DELTAN", 275, 290},
	{"CUC", 291, 306},
	{"CUS", 307, 322},
	{"CRC", 323, 338},
	{"CRS", 339, 354},
	{"CIC", 379, 394},
	{"CIS", 395, 410},
	{"T0C", 411, 424},
	{"AF0", 425, 455},
	{"AF1", 456, 476},
	{"AF2", 477, 482},
	{"AI0", 483, 493},
	{"AI1", 494, 504},
	{"AI2", 505, 518},
	{"REGION1", 519, 519},
	{"REGION2", 520, 520},
	{"REGION3", 521, 521},
	{"REGION4", 522, 522},
	{"REGION5", 523, 523},
	{"BGDA", 524, 533},
	{"BGDB", 534, 543},
	{"E5BHS", 544, 545},
	{"E1BHS", 546, 547},
	{"E5BDVS", 548, 548},
	{"E1BDVS", 549, 549},
}

// ExtractField reads the field's bits out of the block, most significant
// bit first, and returns them as an unsigned integer.
func ExtractField(block []byte, spec FieldSpec) uint32 {
	return uint32(utils.GetBitsAsUint64(block, spec.Start, spec.End-spec.Start+1))
}

// ExtractAll decodes every field of CedAndStatusFields out of the block.
func ExtractAll(block []byte) (map[string]uint32, error) {
	if len(block) < BlockLengthBytes {
		return nil, fmt.Errorf("overrun - expected %d bytes in a CED and status block, got %d",
			BlockLengthBytes, len(block))
	}
	values := make(map[string]uint32)
	for _, spec := range CedAndStatusFields {
		values[spec.Name] = ExtractField(block, spec)
	}
	return values, nil
}

// Format renders extracted values in the table's order, for example
// "T0E: 9, M0: 0, ...".  Table order keeps the output stable.
func Format(values map[string]uint32) string {
	parts := make([]string, 0, len(CedAndStatusFields))
	for _, spec := range CedAndStatusFields {
		if value, present := values[spec.Name]; present {
			parts = append(parts, fmt.Sprintf("%s: %d", spec.Name, value))
		}
	}
	return strings.Join(parts, ", ")
}
