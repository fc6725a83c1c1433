// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package btune drives a streaming chunked-compression host through an
// online exploration of codec, filter, split-mode, compression-level,
// blocksize, shuffle-unit and thread-count parameters, scoring each trial
// against the host's own measured compression/decompression time and
// ratio. BTune never compresses anything itself: it proposes CParams for
// the next chunk and revises its estimate of the best CParams once the
// host reports back how the trial actually performed.
package btune

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
)

// Tuner is one online auto-tuning session, scoped to a single stream of
// chunks sharing a source size and typesize. It is not safe for
// concurrent use: a host driving multiple streams needs one Tuner per
// stream (§5).
type Tuner struct {
	cfg       Config
	SessionID uuid.UUID

	best  CParams
	trial CParams

	state          State
	stepSize       int
	readaptFrom    ReadaptType
	threadsForComp bool
	auxIndex       int
	isRepeating    bool

	nhards    uint32
	nsofts    uint32
	nwaitings uint32

	// repIndex/sampleScores/sampleCratios are slots for a repeated-trial
	// window (see DESIGN.md's Open Question decision on rep_index). They
	// are allocated with length 1 and Update never writes them: each
	// decision uses the single trial's own score and cratio.
	repIndex      int
	sampleScores  []float64
	sampleCratios []float64

	candidates candidateSet
	maxThreads int
	sourceSize int64
	typeSize   int64

	logw  *tabwriter.Writer
	debug *log.Logger
}

// NewTuner constructs a Tuner for a stream whose chunks are sourceSize
// bytes with typeSize-byte elements, on a host with maxThreads available
// worker threads. It does not start exploring; call Init first.
func NewTuner(cfg Config, sourceSize, typeSize int64, maxThreads int) *Tuner {
	t := &Tuner{
		cfg:           cfg,
		SessionID:     uuid.New(),
		sourceSize:    sourceSize,
		typeSize:      typeSize,
		maxThreads:    maxThreads,
		candidates:    defaultCandidates(cfg),
		sampleScores:  make([]float64, 1),
		sampleCratios: make([]float64, 1),
	}
	if _, ok := os.LookupEnv("BTUNE_LOG"); ok {
		t.logw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(t.logw, "session\tstate\treadapt\tcodec\tfilter\tsplit\tclevel\tblocksize\tshuffle\tthreads_c\tthreads_d\tscore\tcratio\twinner")
	}
	if _, ok := os.LookupEnv("BTUNE_DEBUG"); ok {
		t.debug = log.New(os.Stderr, "btune: ", log.LstdFlags)
	}
	return t
}

// SetCandidates narrows the CODEC_FILTER phase's candidate set, e.g. to
// the codec/filter pair returned by predictor.Adapter.Bootstrap, to seed
// exploration from a classifier's guess (§4.9). It must be called before
// Init.
func (t *Tuner) SetCandidates(codecs []Codec, filters []Filter) {
	cs := candidateSet{}
	for _, c := range codecs {
		addCodec(&cs, c)
	}
	for _, f := range filters {
		addFilter(&cs, f)
	}
	if len(cs.codecs) > 0 {
		t.candidates.codecs = cs.codecs
	}
	if len(cs.filters) > 0 {
		t.candidates.filters = cs.filters
	}
}

// Init sets the tuner's initial best CParams and starting phase. hint, if
// non-nil, seeds best directly (§3's "seeded from host-provided
// parameters") and requires cfg.CParamsHint; otherwise best starts from
// defaultCParams and the tuner begins with a hard readapt (or, if
// Behaviour.NHardsBeforeStop is zero, follows initWithoutHards).
func (t *Tuner) Init(hint *CParams) CParams {
	if hint != nil && t.cfg.CParamsHint {
		t.best = hint.Clone()
		t.initWithHint()
	} else {
		t.best = defaultCParams()
		if t.best.BlockSize == 0 {
			t.best.BlockSize = autoBlocksize(t.sourceSize, t.typeSize, t.best.CLevel, 0,
				cparamsIsHCR(t.best.CompCode, t.best.Filter))
		}
		noHardsConfigured := t.cfg.Behaviour.NHardsBeforeStop == 0
		// No hint: BTune has to spend one hard readapt just to find a
		// starting point, so that readapt is free and must not count
		// against the configured budget (btune_init's
		// nhards_before_stop++ in the original).
		t.cfg.Behaviour.NHardsBeforeStop++
		if noHardsConfigured {
			t.initWithoutHards()
		} else {
			t.initHard()
		}
	}
	t.debugf("init: state=%s best=%+v", t.state, t.best)
	return t.best
}

// initWithHint runs the cparams_hint startup branch: a soft readapt if
// any are configured, else a wait, else a hard readapt.
func (t *Tuner) initWithHint() {
	b := t.cfg.Behaviour
	switch {
	case b.NSoftsBeforeHard > 0:
		t.initSoft()
	case b.NWaitsBeforeReadapt > 0:
		t.state = Waiting
		t.readaptFrom = ReadaptWait
	default:
		t.initHard()
	}
}

// NextCParams returns the next trial CParams the host should compress
// (and, depending on PerfMode, decompress) the current chunk with. It
// returns ErrStopped once the tuner has reached STOP.
func (t *Tuner) NextCParams() (CParams, error) {
	if t.state == Stop {
		return t.best, ErrStopped
	}
	t.trial = t.propose()
	return t.trial, nil
}

// Update reports how the most recent trial (as returned by NextCParams)
// actually performed: ctime and cbytes are always required; dtime is the
// decompression time, or 0 if PerfMode == PerfComp and the host never
// decompressed the trial (§7's degenerate-dtime case, see DESIGN.md).
func (t *Tuner) Update(ctime float64, cbytes int64, dtime float64) error {
	if t.state == Stop {
		return ErrStopped
	}

	trial := t.trial
	trial.CTime = ctime
	trial.DTime = dtime
	if cbytes > 0 {
		trial.CRatio = float64(t.sourceSize) / float64(cbytes)
	}
	trial.Score = score(t.cfg, ctime, cbytes, dtime)

	improved := false
	if trial.Score > 0 && t.best.Score > 0 {
		if t.state == Threads {
			// In THREADS the predicate is bypassed: improvement comes
			// from ctime or dtime alone, depending on which side of the
			// phase we're exploring.
			if t.threadsForComp {
				improved = ctime < t.best.CTime
			} else {
				improved = dtime < t.best.DTime
			}
		} else {
			scoreCoef := t.best.Score / trial.Score
			cratioCoef := trial.CRatio / t.best.CRatio
			improved = hasImproved(t.cfg.CompMode, scoreCoef, cratioCoef)
		}
	}

	// A chunk made of special values (e.g. all zeros) compresses down to
	// essentially just framing overhead; it must never be allowed to win
	// on score alone, or best would chase a parameter set that can't
	// generalize to real data.
	winner := "-"
	if cbytes <= maxOverhead+t.typeSize {
		improved = false
		winner = "S"
	} else if improved {
		winner = "W"
	}
	if improved {
		t.best = trial
	}

	t.logRow(trial, winner)
	t.advance(improved)
	if t.state == Waiting {
		t.nwaitings++
	}
	t.debugf("update: improved=%v state=%s best=%+v", improved, t.state, t.best)
	return nil
}

// Free releases the tuner's log writer, flushing any buffered rows. A
// Tuner is unusable after Free.
func (t *Tuner) Free() {
	if t.logw != nil {
		t.logw.Flush()
	}
}

func (t *Tuner) debugf(format string, args ...any) {
	if t.debug != nil {
		t.debug.Printf(format, args...)
	}
}

func (t *Tuner) logRow(c CParams, winner string) {
	if t.logw == nil {
		return
	}
	fmt.Fprintf(t.logw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.4f\t%.4f\t%s\n",
		t.SessionID, t.state, t.readaptFrom, c.CompCode, c.Filter, c.SplitMode, c.CLevel,
		c.BlockSize, c.ShuffleSize, c.NThreadsComp, c.NThreadsDecomp, c.Score, c.CRatio, winner)
}
