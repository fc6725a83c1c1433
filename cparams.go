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

// Codec identifies a host compression algorithm BTune can select.
type Codec int

const (
	BloscLZ Codec = iota
	LZ4
	LZ4HC
	Zlib
	Zstd
)

func (c Codec) String() string {
	switch c {
	case BloscLZ:
		return "blosclz"
	case LZ4:
		return "lz4"
	case LZ4HC:
		return "lz4hc"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Filter identifies a precompression byte-rearrangement filter.
type Filter int

const (
	NoFilter Filter = iota
	Shuffle
	BitShuffle
	ByteDelta
)

func (f Filter) String() string {
	switch f {
	case NoFilter:
		return "nofilter"
	case Shuffle:
		return "shuffle"
	case BitShuffle:
		return "bitshuffle"
	case ByteDelta:
		return "bytedelta"
	default:
		return "unknown"
	}
}

// SplitMode controls whether a block's streams are compressed separately.
type SplitMode int

const (
	NeverSplit SplitMode = iota
	AlwaysSplit
)

func (s SplitMode) String() string {
	if s == AlwaysSplit {
		return "split"
	}
	return "nosplit"
}

const (
	minClevel = 1
	maxClevel = 9

	minBitShuffle = 1
	minShuffle    = 2
	maxShuffle    = 16

	minThreads = 1

	softStepSize = 1
	hardStepSize = 2

	// maxStateThreads is the auxIndex offset that marks the THREADS
	// phase's second (decompression-side) sub-phase under PerfBalanced;
	// auxIndex % maxStateThreads counts the trials within a sub-phase.
	maxStateThreads = 50

	l1CacheSize = 32 * 1024
	minBlock    = 16 * 1024
	maxBlock    = 2 * 1024 * 1024

	// maxOverhead is the Go equivalent of BLOSC2_MAX_OVERHEAD: the
	// largest per-chunk framing overhead a real codec can add. A trial
	// whose cbytes never exceeds this (plus one element) compressed
	// nothing but framing, i.e. the chunk was degenerate input, and can
	// never be allowed to win on score alone.
	maxOverhead = 32
)

// CParams is one trial (or the current best) set of compression
// parameters, together with the direction flags and measurements BTune
// needs to decide whether the next trial improves on it.
type CParams struct {
	CompCode  Codec
	Filter    Filter
	SplitMode SplitMode
	CLevel    int
	BlockSize int64
	// ShuffleSize is the typesize-derived shuffle/bitshuffle unit; it
	// doubles or halves as BTune explores the SHUFFLE_SIZE phase.
	ShuffleSize    int
	NThreadsComp   int
	NThreadsDecomp int

	IncreasingCLevel   bool
	IncreasingBlock    bool
	IncreasingShuffle  bool
	IncreasingNThreads bool

	// PrecedingFilter and FilterMeta implement the filter pipeline's
	// slot protocol (§6.2): a BYTEDELTA-family Filter needs a Shuffle
	// pass in the preceding pipeline slot, with FilterMeta set to the
	// element typesize the delta is computed over. PrecedingFilter is
	// NoFilter for every other Filter.
	PrecedingFilter Filter
	FilterMeta      int64

	Score  float64
	CRatio float64
	CTime  float64
	DTime  float64
}

// Clone returns an independent copy of p.
func (p CParams) Clone() CParams {
	return p
}

// Equal reports whether p and o select the same compression behavior,
// ignoring measurements and direction flags.
func (p CParams) Equal(o CParams) bool {
	return p.CompCode == o.CompCode &&
		p.Filter == o.Filter &&
		p.PrecedingFilter == o.PrecedingFilter &&
		p.FilterMeta == o.FilterMeta &&
		p.SplitMode == o.SplitMode &&
		p.CLevel == o.CLevel &&
		p.BlockSize == o.BlockSize &&
		p.ShuffleSize == o.ShuffleSize &&
		p.NThreadsComp == o.NThreadsComp &&
		p.NThreadsDecomp == o.NThreadsDecomp
}

func minShuffleFor(f Filter) int {
	if f == Shuffle {
		return minShuffle
	}
	return minBitShuffle
}

// defaultCParams mirrors the original's cparams_btune_default: LZ4 +
// shuffle, always-split, clevel 9, automatic block/shuffle sizing.
func defaultCParams() CParams {
	return CParams{
		CompCode:           LZ4,
		Filter:             Shuffle,
		SplitMode:          AlwaysSplit,
		CLevel:             maxClevel,
		BlockSize:          0,
		ShuffleSize:        0,
		NThreadsComp:       0,
		NThreadsDecomp:     0,
		IncreasingCLevel:   false,
		IncreasingBlock:    true,
		IncreasingShuffle:  true,
		IncreasingNThreads: false,
		Score:              100,
		CRatio:             1.0,
		CTime:              100,
		DTime:              100,
	}
}
