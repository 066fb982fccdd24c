package engine

import (
	"github.com/goblimey/go-osnma/osnma/gst"
	"github.com/goblimey/go-osnma/osnma/inav"
)

// FedWord records one FeedInav call made against a Mock.
type FedWord struct {
	Word []byte
	Svn  inav.Svn
	Gst  gst.Gst
	Band inav.Band
}

// FedOsnma records one FeedOsnma call made against a Mock.
type FedOsnma struct {
	Data []byte
	Svn  inav.Svn
	Gst  gst.Gst
}

// Mock is a scriptable Engine for testing the pipeline.  It records what
// it is fed and serves whatever blocks the test has planted.
type Mock struct {
	FedWords  []FedWord
	FedOsnmas []FedOsnma

	CedBlocks    map[inav.Svn]*DataBlock
	TimingBlocks map[inav.Svn]*DataBlock
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{
		CedBlocks:    make(map[inav.Svn]*DataBlock),
		TimingBlocks: make(map[inav.Svn]*DataBlock),
	}
}

func (m *Mock) FeedInav(word []byte, svn inav.Svn, g gst.Gst, band inav.Band) {
	w := make([]byte, len(word))
	copy(w, word)
	m.FedWords = append(m.FedWords, FedWord{Word: w, Svn: svn, Gst: g, Band: band})
}

func (m *Mock) FeedOsnma(data []byte, svn inav.Svn, g gst.Gst) {
	d := make([]byte, len(data))
	copy(d, data)
	m.FedOsnmas = append(m.FedOsnmas, FedOsnma{Data: d, Svn: svn, Gst: g})
}

func (m *Mock) CedAndStatus(svn inav.Svn) *DataBlock {
	return m.CedBlocks[svn]
}

func (m *Mock) TimingParameters(svn inav.Svn) *DataBlock {
	return m.TimingBlocks[svn]
}
