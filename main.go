// go-osnma reads navigation monitoring packets in JSON form from
// stdin, screens the Galileo I/NAV words in them the way the
// authentication pipeline does, and counts the words it would pass
// on, by satellite and word type.  It prints the counts at end of
// input.
//
// The program needs at least one trust anchor - the Merkle tree root
// of the OSNMA public key set or an ECDSA public key.  Keys come as a
// P-256 key in a PEM file (-pubkey) or a P-521 key as a hex SEC1
// point (-pubkey-p521), each with its key ID (-pkid).
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/goblimey/go-osnma/osnma/gst"
	"github.com/goblimey/go-osnma/osnma/inav"
	"github.com/goblimey/go-osnma/osnma/navmon"
	"github.com/goblimey/go-osnma/osnma/trust"
	"github.com/goblimey/go-osnma/osnma/utils"
)

func main() {

	merkleRoot := flag.String("merkle-root", "", "Merkle tree root in hex")
	pubkeyPath := flag.String("pubkey", "", "public key in a PEM file")
	pubkeyP521 := flag.String("pubkey-p521", "", "P-521 public key as a hex SEC1 point")
	pkid := flag.Int("pkid", -1, "ID of the given public key")
	slowMacOnly := flag.Bool("slow-mac-only", false, "only process slow MAC data")
	flag.Parse()

	config := trust.Config{
		MerkleRoot:  *merkleRoot,
		PubkeyPath:  *pubkeyPath,
		PubkeyP521:  *pubkeyP521,
		Pkid:        *pkid,
		SlowMacOnly: *slowMacOnly,
	}

	anchor, trustError := trust.Load(&config)
	if trustError != nil {
		log.Fatal(trustError)
	}

	logger := slog.New(slog.NewTextHandler(utils.GetDailyLogWriter(), nil))
	logger.Info("monitor starting",
		"merkleRoot", anchor.MerkleRoot != nil,
		"publicKey", anchor.PublicKey != nil,
		"slowMacOnly", anchor.SlowMacOnly)

	wordCount := make(map[inav.Svn]map[uint]uint)
	var synchronizer gst.Synchronizer
	var towCorrector gst.TowCorrector

	reader := navmon.NewReader(os.Stdin)
	for {
		packet, err := reader.ReadPacket()
		if err != nil {
			var frameError *navmon.FrameError
			if errors.As(err, &frameError) {
				logger.Error("skipping damaged packet", "error", frameError.Error())
				continue
			}
			break
		}

		fragment := packet.Inav
		if fragment == nil || fragment.Sigid == nil {
			continue
		}

		g := gst.New(uint16(fragment.Wn), fragment.Tow)
		tow, corrected := towCorrector.Correct(g.Tow)
		if corrected {
			g.Tow = tow
		}
		if !synchronizer.Accept(g) {
			logger.Warn("dropping INAV word from previous subframe",
				"gst", g.String(), "svn", fragment.Svn)
			continue
		}

		svn, svnError := inav.NewSvn(fragment.Svn)
		if svnError != nil {
			logger.Error("INAV word with bad satellite number", "error", svnError.Error())
			continue
		}
		if _, bandError := inav.BandFromSigid(*fragment.Sigid); bandError != nil {
			logger.Error("INAV word received on non-INAV band", "sigid", *fragment.Sigid)
			continue
		}
		if inav.IsDummy(fragment.Word) {
			continue
		}

		wordType, typeError := inav.WordType(fragment.Word)
		if typeError != nil {
			logger.Error("short INAV word", "error", typeError.Error())
			continue
		}

		if wordCount[svn] == nil {
			wordCount[svn] = make(map[uint]uint)
		}
		wordCount[svn][wordType]++
	}

	for svn := range wordCount {
		for wordType := range wordCount[svn] {
			fmt.Printf("%s word type %2d: %6d\n",
				svn.String(), wordType, wordCount[svn][wordType])
		}
	}
}
