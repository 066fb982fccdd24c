// The engine package defines the boundary between the ingestion pipeline
// and the OSNMA authentication engine.  The engine owns the Merkle tree
// and signature checking and the TESLA chain bookkeeping; the pipeline
// only feeds it screened words and polls it for authenticated data.
package engine

import (
	"github.com/goblimey/go-osnma/osnma/gst"
	"github.com/goblimey/go-osnma/osnma/inav"
)

// CedAndStatusBytes is the materialised size of an authenticated CED and
// status block.
const CedAndStatusBytes = 69

// TimingParametersBytes is the materialised size of an authenticated
// timing parameters block.
const TimingParametersBytes = 18

// DataBlock is a snapshot of navigation data that the engine has
// authenticated: the data bytes, the number of tag bits that went into
// authenticating them, and the subframe they belong to.  The pipeline
// only reads snapshots; the engine owns the underlying state.
type DataBlock struct {
	Data     []byte
	Authbits uint
	Gst      gst.Gst
}

// Engine is the authentication engine as seen by the pipeline.  FeedInav
// and FeedOsnma absorb a screened navigation word and its OSNMA payload.
// CedAndStatus and TimingParameters return the satellite's latest
// authenticated block of each kind, or nil if nothing has been
// authenticated for it yet.
type Engine interface {
	FeedInav(word []byte, svn inav.Svn, g gst.Gst, band inav.Band)
	FeedOsnma(data []byte, svn inav.Svn, g gst.Gst)
	CedAndStatus(svn inav.Svn) *DataBlock
	TimingParameters(svn inav.Svn) *DataBlock
}
