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

package btune

import (
	"log"

	"golang.org/x/exp/slices"
)

// Bandwidth units, expressed in kB/s, for use in Config.Bandwidth.
const (
	MBPS    = 1024
	MBPS10  = 10 * MBPS
	MBPS100 = 100 * MBPS
	GBPS    = MBPS * MBPS
	GBPS10  = 10 * MBPS * MBPS
	GBPS100 = 100 * MBPS * MBPS
	TBPS    = MBPS * MBPS * MBPS
)

// PerfMode selects which time terms enter the Scoring Function (§4.1).
type PerfMode int

const (
	PerfComp PerfMode = iota
	PerfDecomp
	PerfBalanced
)

func (m PerfMode) String() string {
	switch m {
	case PerfComp:
		return "COMP"
	case PerfDecomp:
		return "DECOMP"
	case PerfBalanced:
		return "BALANCED"
	default:
		return "UNKNOWN"
	}
}

// CompMode selects the Improvement Predicate and the candidate codec set.
type CompMode int

const (
	CompHSP CompMode = iota
	CompBalanced
	CompHCR
)

func (m CompMode) String() string {
	switch m {
	case CompHSP:
		return "HSP"
	case CompBalanced:
		return "BALANCED"
	case CompHCR:
		return "HCR"
	default:
		return "UNKNOWN"
	}
}

// RepeatMode determines BTune's behavior once the initial readapt
// schedule (described by Behaviour) has completed once.
type RepeatMode int

const (
	RepeatStop RepeatMode = iota
	RepeatSoft
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatStop:
		return "STOP"
	case RepeatSoft:
		return "REPEAT_SOFT"
	case RepeatAll:
		return "REPEAT_ALL"
	default:
		return "UNKNOWN"
	}
}

// Behaviour specifies the number of initial hard readapts, the number of
// soft readapts between hard readapts, and the number of waits before a
// readapt, plus what happens once the initial schedule is exhausted.
type Behaviour struct {
	NWaitsBeforeReadapt uint32
	NSoftsBeforeHard    uint32
	NHardsBeforeStop    uint32
	RepeatMode          RepeatMode

	// DisableShuffleSize, DisableBlockSize, DisableMemcpy and
	// DisableThreads skip the corresponding phase entirely. They default
	// to false (all phases enabled); see DESIGN.md for why this Go port
	// inverts the original's compile-time defaults.
	DisableShuffleSize bool
	DisableBlockSize   bool
	DisableMemcpy      bool
	DisableThreads     bool
}

// Config is BTune's immutable (after Init) tuning configuration.
type Config struct {
	// Bandwidth, in kB/s, used to weight byte volume against time in the
	// Scoring Function.
	Bandwidth uint32
	PerfMode  PerfMode
	CompMode  CompMode
	Behaviour Behaviour

	// CParamsHint, if set, seeds the initial best from host-provided
	// parameters (via Tuner.Init's hint argument) instead of the default.
	CParamsHint bool
}

// DefaultConfig mirrors BTUNE_CONFIG_DEFAULTS: tuned for a 20 GB/s bandwidth
// budget with a balanced performance/compression objective, one initial
// hard readapt, five soft readapts per hard readapt, and one repeat before
// stopping.
func DefaultConfig() Config {
	return Config{
		Bandwidth: 2 * GBPS10,
		PerfMode:  PerfBalanced,
		CompMode:  CompBalanced,
		Behaviour: Behaviour{
			NWaitsBeforeReadapt: 0,
			NSoftsBeforeHard:    5,
			NHardsBeforeStop:    1,
			RepeatMode:          RepeatStop,
		},
		CParamsHint: false,
	}
}

// candidateSet is the active codecs[]/filters[] pair a Tuner explores
// during the CODEC_FILTER phase; it may be narrowed to a singleton by the
// Predictor Adapter on the first chunk (§4.9).
type candidateSet struct {
	codecs  []Codec
	filters []Filter
}

func addCodec(cs *candidateSet, c Codec) {
	if !slices.Contains(cs.codecs, c) {
		cs.codecs = append(cs.codecs, c)
	}
}

func addFilter(cs *candidateSet, f Filter) {
	if !slices.Contains(cs.filters, f) {
		cs.filters = append(cs.filters, f)
	}
}

// defaultCandidates derives the active codec/filter lists from comp_mode,
// matching btune_init_codecs in the original.
func defaultCandidates(cfg Config) candidateSet {
	cs := candidateSet{}
	switch cfg.CompMode {
	case CompHCR:
		// In HCR mode only try ZSTD and ZLIB.
		addCodec(&cs, Zstd)
		addCodec(&cs, Zlib)
	default:
		// LZ4 is mandatory in every other mode.
		addCodec(&cs, LZ4)
		if cfg.CompMode == CompBalanced {
			addCodec(&cs, BloscLZ)
		}
		if cfg.PerfMode == PerfDecomp {
			addCodec(&cs, LZ4HC)
		}
	}
	addFilter(&cs, NoFilter)
	addFilter(&cs, Shuffle)
	addFilter(&cs, BitShuffle)
	return cs
}

// warnUnknown logs a configuration warning and is used for enum fields
// that fail validation; the caller substitutes its own default value and
// continues, matching the "warn and continue" style of
// blockfmt.CompressorByName on an unrecognized algorithm name.
func warnUnknown(logger *log.Logger, field string, value any) {
	if logger == nil {
		return
	}
	logger.Printf("WARNING: unknown %s %v, using default", field, value)
}

// ParsePerfMode parses a host-supplied performance mode name ("comp",
// "decomp", "balanced"), falling back to PerfBalanced and logging a
// warning to logger (which may be nil) on an unrecognized name.
func ParsePerfMode(name string, logger *log.Logger) PerfMode {
	switch name {
	case "comp":
		return PerfComp
	case "decomp":
		return PerfDecomp
	case "balanced":
		return PerfBalanced
	default:
		warnUnknown(logger, "perf mode", name)
		return PerfBalanced
	}
}

// ParseCompMode parses a host-supplied compression mode name ("hsp",
// "balanced", "hcr"), falling back to CompBalanced and logging a warning
// to logger (which may be nil) on an unrecognized name.
func ParseCompMode(name string, logger *log.Logger) CompMode {
	switch name {
	case "hsp":
		return CompHSP
	case "balanced":
		return CompBalanced
	case "hcr":
		return CompHCR
	default:
		warnUnknown(logger, "comp mode", name)
		return CompBalanced
	}
}
