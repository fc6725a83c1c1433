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

// cparamsIsHCR classifies a codec (optionally combined with a bitshuffle
// filter) as High-Compression-Ratio-oriented, the way the original's
// is_HCR does: it affects how generously auto-blocksize sizes blocks,
// since HCR codecs show a large overhead on small blocks.
func cparamsIsHCR(c Codec, f Filter) bool {
	switch c {
	case BloscLZ:
		return false
	case LZ4:
		return f == BitShuffle
	case LZ4HC, Zlib, Zstd:
		return true
	default:
		return false
	}
}

// autoBlocksize implements the Auto-Blocksize rule (§4.5). userBlocksize
// is the host-forced value, if any (0 means "let BTune choose").
func autoBlocksize(sourceSize, typesize int64, clevel int, userBlocksize int64, hcr bool) int64 {
	if sourceSize < typesize {
		return 1
	}

	blocksize := sourceSize
	if userBlocksize != 0 {
		blocksize = userBlocksize
		if blocksize < minBlock {
			blocksize = minBlock
		}
	} else if sourceSize >= l1CacheSize {
		blocksize = l1CacheSize
		if hcr {
			blocksize *= 2
		}
		switch {
		case clevel == 0:
			blocksize /= 4
		case clevel == 1:
			blocksize /= 2
		case clevel == 2:
			// unchanged
		case clevel == 3:
			blocksize *= 2
		case clevel >= 4 && clevel <= 5:
			blocksize *= 4
		case clevel >= 6 && clevel <= 8:
			blocksize *= 8
		case clevel == 9:
			blocksize *= 8
			if hcr {
				blocksize *= 2
			}
		}
	}

	if clevel > 0 {
		if blocksize > (1 << 16) {
			blocksize = 1 << 16
		}
		blocksize *= typesize
		if blocksize < (1 << 16) {
			blocksize = 1 << 16
		}
	}

	if blocksize > sourceSize {
		blocksize = sourceSize
	}
	if blocksize > typesize {
		blocksize = blocksize / typesize * typesize
	}
	return blocksize
}
