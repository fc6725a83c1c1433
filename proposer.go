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

// propose returns the next trial CParams for the tuner's current state,
// cloned from best and mutated along the one axis that state explores. It
// mirrors btune_next_cparams's per-state dispatch, followed by the
// mode-specific clamp set_btune_cparams applies to every proposal.
func (t *Tuner) propose() CParams {
	var aux CParams
	switch t.state {
	case CodecFilter:
		aux = t.proposeCodecFilter()
	case ShuffleSize:
		aux = t.proposeShuffleSize()
	case Threads:
		aux = t.proposeThreads()
	case CLevel:
		aux = t.proposeClevel()
	case BlockSize:
		aux = t.proposeBlockSize()
	case Memcpy:
		aux = t.proposeMemcpy()
	default:
		aux = t.best.Clone()
	}
	return t.clampProposal(aux)
}

// clampProposal applies the caps set_btune_cparams enforces on every
// proposal, regardless of which phase produced it: BALANCED mode caps
// ZSTD/ZLIB at clevel 3, HCR mode caps at clevel 6, ZSTD never lands on
// clevel 9 (it's too slow to be worth exploring), and a zero blocksize is
// always resolved through the Auto-Blocksize rule before being handed to
// the host.
func (t *Tuner) clampProposal(aux CParams) CParams {
	if t.cfg.CompMode == CompBalanced && (aux.CompCode == Zstd || aux.CompCode == Zlib) && aux.CLevel >= 3 {
		aux.CLevel = 3
	}
	if t.cfg.CompMode == CompHCR && aux.CLevel >= 6 {
		aux.CLevel = 6
	}
	if aux.CLevel == 9 && aux.CompCode == Zstd {
		aux.CLevel = 8
	}
	if aux.BlockSize == 0 {
		aux.BlockSize = autoBlocksize(t.sourceSize, t.typeSize, aux.CLevel, 0,
			cparamsIsHCR(aux.CompCode, aux.Filter))
	}
	return aux
}

// proposeCodecFilter walks the (codec x filter x splitmode) cross product
// of the active candidate set, indexed by auxIndex, matching set_btune_cparams's
// codec/filter/split assignment plus the shuffle-size reset that follows
// picking a new filter.
func (t *Tuner) proposeCodecFilter() CParams {
	aux := t.best.Clone()

	nf := len(t.candidates.filters)
	nc := len(t.candidates.codecs)
	idx := t.auxIndex

	splitIdx := idx % 2
	idx /= 2
	filterIdx := idx % nf
	idx /= nf
	codecIdx := idx % nc

	aux.CompCode = t.candidates.codecs[codecIdx]
	aux.Filter = t.candidates.filters[filterIdx]
	if splitIdx == 0 {
		aux.SplitMode = NeverSplit
	} else {
		aux.SplitMode = AlwaysSplit
	}
	if aux.CompCode == BloscLZ {
		// BLOSCLZ only pays off with always-split.
		aux.SplitMode = AlwaysSplit
	}

	if aux.Filter == ByteDelta {
		aux.PrecedingFilter = Shuffle
		aux.FilterMeta = t.typeSize
	} else {
		aux.PrecedingFilter = NoFilter
		aux.FilterMeta = 0
	}

	if aux.Filter != NoFilter {
		aux.ShuffleSize = minShuffleFor(aux.Filter)
	} else {
		aux.ShuffleSize = 0
	}

	// The first tuning of ZSTD/ZLIB in COMP/BALANCED should start at
	// clevel 3 rather than whatever best.CLevel was left at.
	perf := t.cfg.PerfMode
	if (perf == PerfComp || perf == PerfBalanced) &&
		(aux.CompCode == Zstd || aux.CompCode == Zlib) &&
		t.nhards == 0 {
		aux.CLevel = 3
	}

	t.auxIndex++
	return aux
}

// proposeShuffleSize doubles or halves the shuffle/bitshuffle unit,
// clamped to [minShuffleFor(filter), MAX_SHUFFLE].
func (t *Tuner) proposeShuffleSize() CParams {
	aux := t.best.Clone()

	if aux.IncreasingShuffle {
		aux.ShuffleSize <<= 1
	} else {
		aux.ShuffleSize >>= 1
	}

	if lo := minShuffleFor(aux.Filter); aux.ShuffleSize < lo {
		aux.ShuffleSize = lo
	}
	if aux.ShuffleSize > maxShuffle {
		aux.ShuffleSize = maxShuffle
	}

	t.auxIndex++
	return aux
}

// proposeThreads steps the compression- or decompression-side thread
// count (per threadsForComp) by stepSize, clamped to [MIN_THREADS,
// maxThreads].
func (t *Tuner) proposeThreads() CParams {
	aux := t.best.Clone()

	n := aux.NThreadsComp
	if !t.threadsForComp {
		n = aux.NThreadsDecomp
	}
	if aux.IncreasingNThreads {
		n += t.stepSize
		if n > t.maxThreads {
			n = t.maxThreads
		}
	} else {
		n -= t.stepSize
		if n < minThreads {
			n = minThreads
		}
	}
	if t.threadsForComp {
		aux.NThreadsComp = n
	} else {
		aux.NThreadsDecomp = n
	}

	t.auxIndex++
	return aux
}

// proposeClevel steps the compression level by stepSize, clamped to
// [1, MAX_CLEVEL].
func (t *Tuner) proposeClevel() CParams {
	aux := t.best.Clone()

	if aux.IncreasingCLevel {
		aux.CLevel += t.stepSize
		if aux.CLevel > maxClevel {
			aux.CLevel = maxClevel
		}
	} else {
		aux.CLevel -= t.stepSize
		if aux.CLevel < minClevel {
			aux.CLevel = minClevel
		}
	}

	t.auxIndex++
	return aux
}

// proposeBlockSize shifts the block size left or right by stepSize bits,
// clamped to [MIN_BLOCK, min(MAX_BLOCK, sourceSize)].
func (t *Tuner) proposeBlockSize() CParams {
	aux := t.best.Clone()

	if aux.IncreasingBlock {
		aux.BlockSize <<= t.stepSize
		if aux.BlockSize > maxBlock {
			aux.BlockSize = maxBlock
		}
		if aux.BlockSize > t.sourceSize {
			aux.BlockSize = t.sourceSize
		}
	} else {
		aux.BlockSize >>= t.stepSize
		if aux.BlockSize < minBlock {
			aux.BlockSize = minBlock
		}
	}

	t.auxIndex++
	return aux
}

// proposeMemcpy tries the degenerate clevel-0 (raw copy) trial once per
// CLEVEL/BLOCKSIZE cycle.
func (t *Tuner) proposeMemcpy() CParams {
	aux := t.best.Clone()
	aux.CLevel = 0
	t.auxIndex++
	return aux
}
