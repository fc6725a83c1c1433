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

// hasEndedClevel reports whether best's clevel direction has reached the
// end of its range given the current step size.
func hasEndedClevel(best CParams, stepSize int) bool {
	if best.IncreasingCLevel {
		return best.CLevel >= maxClevel-stepSize
	}
	return best.CLevel <= 1+stepSize
}

// hasEndedShuffle reports whether best's shufflesize direction has
// reached the end of its range (bounded below by the filter's minimum
// unit, above by MAX_SHUFFLE).
func hasEndedShuffle(best CParams) bool {
	lo := minShuffleFor(best.Filter)
	if best.IncreasingShuffle {
		return best.ShuffleSize >= maxShuffle
	}
	return best.ShuffleSize <= lo
}

// hasEndedThreads reports whether the thread count currently being tuned
// (compression- or decompression-side, per threadsForComp) has reached
// the end of its range.
func hasEndedThreads(best CParams, threadsForComp bool, maxThreads int) bool {
	n := best.NThreadsDecomp
	if threadsForComp {
		n = best.NThreadsComp
	}
	if best.IncreasingNThreads {
		return n >= maxThreads
	}
	return n <= minThreads
}

// hasEndedBlocksize reports whether best's blocksize direction has
// reached the end of its range, bounded by MAX_BLOCK/MIN_BLOCK (scaled by
// the current step size) and by the chunk's source size.
func hasEndedBlocksize(best CParams, stepSize int, sourceSize int64) bool {
	if best.IncreasingBlock {
		return best.BlockSize > (maxBlock>>stepSize) ||
			best.BlockSize > (sourceSize >> stepSize)
	}
	return best.BlockSize < int64(minBlock<<stepSize)
}
