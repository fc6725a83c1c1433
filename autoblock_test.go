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

import "testing"

func TestCparamsIsHCR(t *testing.T) {
	cases := []struct {
		codec  Codec
		filter Filter
		want   bool
	}{
		{BloscLZ, NoFilter, false},
		{LZ4, BitShuffle, true},
		{LZ4, Shuffle, false},
		{LZ4HC, NoFilter, true},
		{Zlib, NoFilter, true},
		{Zstd, NoFilter, true},
	}
	for _, c := range cases {
		if got := cparamsIsHCR(c.codec, c.filter); got != c.want {
			t.Errorf("cparamsIsHCR(%s, %s) = %v, want %v", c.codec, c.filter, got, c.want)
		}
	}
}

func TestAutoBlocksizeDegenerate(t *testing.T) {
	got := autoBlocksize(4, 8, 5, 0, false)
	if got != 1 {
		t.Errorf("autoBlocksize with sourceSize < typesize = %d, want 1", got)
	}
}

func TestAutoBlocksizeUserForced(t *testing.T) {
	got := autoBlocksize(1<<20, 8, 5, 4096, false)
	if got < minBlock {
		t.Errorf("autoBlocksize with a small user blocksize = %d, want >= %d", got, minBlock)
	}
}

func TestAutoBlocksizeBoundedBySource(t *testing.T) {
	var sourceSize int64 = 4096
	got := autoBlocksize(sourceSize, 8, 9, 0, true)
	if got > sourceSize {
		t.Errorf("autoBlocksize = %d, must not exceed sourceSize %d", got, sourceSize)
	}
}

func TestAutoBlocksizeMonotonicWithClevel(t *testing.T) {
	var sourceSize int64 = 64 << 20
	low := autoBlocksize(sourceSize, 4, 0, 0, false)
	high := autoBlocksize(sourceSize, 4, 8, 0, false)
	if high < low {
		t.Errorf("expected clevel 8's blocksize (%d) >= clevel 0's (%d)", high, low)
	}
}
