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

package hostctx

import (
	"bytes"
	"testing"

	"github.com/blosc2/btune"
)

func TestTrialRoundTripsZstd(t *testing.T) {
	ctx := NewContext()
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog"), 1024)
	p := btune.CParams{CompCode: btune.Zstd, CLevel: 3, NThreadsComp: 2}

	ctime, cbytes, dtime, err := ctx.Trial(p, src, true)
	if err != nil {
		t.Fatalf("Trial: %v", err)
	}
	if ctime < 0 || dtime < 0 {
		t.Errorf("expected non-negative timings, got ctime=%v dtime=%v", ctime, dtime)
	}
	if cbytes <= 0 || cbytes >= int64(len(src)) {
		t.Errorf("expected compressed size smaller than input for repetitive data, got %d (input %d)", cbytes, len(src))
	}
}

func TestTrialRoundTripsS2(t *testing.T) {
	ctx := NewContext()
	src := bytes.Repeat([]byte("abcdefgh"), 2048)
	p := btune.CParams{CompCode: btune.LZ4, CLevel: 5, NThreadsComp: 1}

	_, cbytes, _, err := ctx.Trial(p, src, true)
	if err != nil {
		t.Fatalf("Trial: %v", err)
	}
	if cbytes <= 0 {
		t.Errorf("expected positive compressed size, got %d", cbytes)
	}
}

func TestTrialNoDecompMeasurement(t *testing.T) {
	ctx := NewContext()
	src := []byte("hello world")
	p := btune.CParams{CompCode: btune.Zstd, CLevel: 1, NThreadsComp: 1}

	_, _, dtime, err := ctx.Trial(p, src, false)
	if err != nil {
		t.Fatalf("Trial: %v", err)
	}
	if dtime != 0 {
		t.Errorf("Trial with measureDecomp=false returned dtime=%v, want 0", dtime)
	}
}

func TestTrialByteDeltaRoundTrips(t *testing.T) {
	ctx := NewContext()
	src := make([]byte, 4*256)
	for i := range src {
		src[i] = byte(i / 4)
	}
	p := btune.CParams{
		CompCode: btune.Zstd, CLevel: 3, NThreadsComp: 1,
		Filter: btune.ByteDelta, PrecedingFilter: btune.Shuffle, FilterMeta: 4,
	}
	_, cbytes, _, err := ctx.Trial(p, src, true)
	if err != nil {
		t.Fatalf("Trial: %v", err)
	}
	if cbytes <= 0 {
		t.Errorf("expected positive compressed size, got %d", cbytes)
	}
}

func TestShuffleUnshuffleRoundTrip(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	got := unshuffle(shuffle(src, 4), 4)
	if !bytes.Equal(got, src) {
		t.Errorf("shuffle/unshuffle round trip = %v, want %v", got, src)
	}
}

func TestDeltaEncodeDecodeRoundTrip(t *testing.T) {
	src := []byte{10, 20, 15, 200, 255, 0, 5}
	got := deltaDecode(deltaEncode(src))
	if !bytes.Equal(got, src) {
		t.Errorf("delta encode/decode round trip = %v, want %v", got, src)
	}
}

func TestDetectMaxThreadsPositive(t *testing.T) {
	if n := DetectMaxThreads(); n < 1 {
		t.Errorf("DetectMaxThreads() = %d, want >= 1", n)
	}
}
