// The handler package contains the pipeline that connects a navigation
// monitoring feed to an OSNMA authentication engine.
//
//	handler := handler.New(engine, logger)
//	err := handler.HandlePackets(navmon.NewReader(os.Stdin))
//
// For each packet carrying an I/NAV word the handler normalises the
// transmission time, corrects a known TOW artifact in monitoring feeds,
// screens the word against the subframe watermark, drops dummy words, and
// feeds what survives to the engine together with any OSNMA bytes.  After
// each feed it polls the engine for newly authenticated data.  A block
// that differs from what was last seen for that satellite is reported:
// for CED and status blocks the report includes the full decoded field
// table.  Re-polling unchanged data never re-reports it.
//
// Processing is single threaded and pull based: the only blocking point
// is the packet read, and all state (the watermark, the TOW corrector and
// the per-satellite caches) is owned by the handler and touched only from
// the loop.
package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/goblimey/go-osnma/osnma/ced"
	"github.com/goblimey/go-osnma/osnma/engine"
	"github.com/goblimey/go-osnma/osnma/gst"
	"github.com/goblimey/go-osnma/osnma/inav"
	"github.com/goblimey/go-osnma/osnma/navmon"
)

// Handler is the ingestion pipeline.  Create one with New and drive it
// with HandlePackets, or feed it packets one at a time with HandlePacket.
type Handler struct {
	engine engine.Engine
	logger *slog.Logger

	synchronizer gst.Synchronizer
	towCorrector gst.TowCorrector

	// Last reported authenticated data per satellite, for change
	// detection.  A nil entry means nothing has been reported yet.
	cedAndStatus     [inav.NumSvns]*[engine.CedAndStatusBytes]byte
	timingParameters [inav.NumSvns]*[engine.TimingParametersBytes]byte
}

// New creates a Handler feeding the given engine and reporting through
// the given logger.
func New(authEngine engine.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		engine: authEngine,
		logger: logger,
	}
}

// HandlePackets reads packets until the feed ends.  Damaged packets are
// logged and skipped; any other read failure ends the loop and is
// returned.
func (handler *Handler) HandlePackets(reader *navmon.Reader) error {
	for {
		packet, err := reader.ReadPacket()
		if err == io.EOF {
			return nil
		}
		var frameError *navmon.FrameError
		if errors.As(err, &frameError) {
			handler.logger.Error("skipping damaged packet", "error", frameError.Error())
			continue
		}
		if err != nil {
			return err
		}

		handler.HandlePacket(packet)
	}
}

// HandlePacket runs one packet through the pipeline.  Packets without an
// I/NAV fragment, or whose fragment names no signal, are ignored.
func (handler *Handler) HandlePacket(packet *navmon.Packet) {
	fragment := packet.Inav
	if fragment == nil || fragment.Sigid == nil {
		return
	}

	// Fold an overlong TOW into the week, then correct the TOW artifact.
	// The corrector must see every word, accepted or not.
	g := gst.New(uint16(fragment.Wn), fragment.Tow)
	lastTowMod30 := handler.towCorrector.LastTowMod30()
	tow, corrected := handler.towCorrector.Correct(g.Tow)
	if corrected {
		handler.logger.Debug("fixing wrong TOW",
			"svn", fragment.Svn, "tow", g.Tow, "lastTowMod30", lastTowMod30)
		g.Tow = tow
	}

	// Screen against the subframe watermark.  A word for a superseded
	// subframe is dropped whichever satellite sent it.
	if !handler.synchronizer.Accept(g) {
		current, _ := handler.synchronizer.CurrentSubframe()
		handler.logger.Warn("dropping INAV word from previous subframe",
			"currentSubframe", current.String(), "gst", g.String(),
			"svn", fragment.Svn, "sigid", *fragment.Sigid)
		return
	}

	svn, svnError := inav.NewSvn(fragment.Svn)
	if svnError != nil {
		handler.logger.Error("INAV word with bad satellite number", "error", svnError.Error())
		return
	}

	band, bandError := inav.BandFromSigid(*fragment.Sigid)
	if bandError != nil {
		handler.logger.Error("INAV word received on non-INAV band", "sigid", *fragment.Sigid)
		return
	}

	// Dummy messages carry no authenticatable data and must not reach
	// the engine.
	if inav.IsDummy(fragment.Word) {
		handler.logger.Debug("discarding dummy INAV word",
			"svn", svn.String(), "band", band.String(), "gst", g.String())
		return
	}

	handler.engine.FeedInav(fragment.Word, svn, g, band)
	if len(fragment.Osnma) > 0 {
		handler.engine.FeedOsnma(fragment.Osnma, svn, g)
	}

	handler.pollAuthenticated()
}

// pollAuthenticated asks the engine for every satellite's authenticated
// blocks and reports the ones that changed.
func (handler *Handler) pollAuthenticated() {
	for n := 1; n <= inav.NumSvns; n++ {
		svn := inav.Svn(n)
		if block := handler.engine.CedAndStatus(svn); block != nil {
			handler.reportCedAndStatus(svn, block)
		}
		if block := handler.engine.TimingParameters(svn); block != nil {
			handler.reportTimingParameters(svn, block)
		}
	}
}

// reportCedAndStatus reports a newly authenticated CED and status block,
// with its decoded fields, and remembers it.  An unchanged block is
// reported at most once.
func (handler *Handler) reportCedAndStatus(svn inav.Svn, block *engine.DataBlock) {
	var buffer [engine.CedAndStatusBytes]byte
	copy(buffer[:], block.Data)

	index := svn.Index()
	if handler.cedAndStatus[index] != nil && *handler.cedAndStatus[index] == buffer {
		return
	}

	values, extractError := ced.ExtractAll(buffer[:])
	if extractError != nil {
		// Cannot happen with a fixed-size buffer, but don't report
		// rubbish if it somehow does.
		handler.logger.Error("cannot decode CED and status block",
			"svn", svn.String(), "error", extractError.Error())
		return
	}

	handler.logger.Info("new CED and status authenticated",
		"svn", svn.String(), "authbits", block.Authbits,
		"gst", block.Gst.String(), "data", ced.Format(values))
	handler.cedAndStatus[index] = &buffer
}

// reportTimingParameters reports a newly authenticated timing parameters
// block and remembers it.
func (handler *Handler) reportTimingParameters(svn inav.Svn, block *engine.DataBlock) {
	var buffer [engine.TimingParametersBytes]byte
	copy(buffer[:], block.Data)

	index := svn.Index()
	if handler.timingParameters[index] != nil && *handler.timingParameters[index] == buffer {
		return
	}

	handler.logger.Info("new timing parameters authenticated",
		"svn", svn.String(), "authbits", block.Authbits, "gst", block.Gst.String())
	handler.timingParameters[index] = &buffer
}
