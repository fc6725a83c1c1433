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

// Package hostctx is the external collaborator BTune drives but never
// implements (spec.md §1, §6.1, §6.2): a real, measurable compression
// backend that a Tuner proposes CParams to, and that reports back real
// ctime/cbytes/dtime.
package hostctx

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/blosc2/btune"
)

// Context is the host compression context contract BTune's Tuner is
// driven against: it applies a trial's CParams, compresses (and
// optionally decompresses) one chunk, and reports the measurements the
// Tuner needs to score the trial. It mirrors compr.Compressor/
// Decompressor's "Name/Compress/Decompress" shape, widened to carry
// timing.
type Context interface {
	// Trial compresses src under p, and — if measureDecomp is set — also
	// decompresses the result back and verifies it round-trips. It
	// returns the elapsed compression time, the compressed size, and the
	// elapsed decompression time (zero if measureDecomp is false).
	Trial(p btune.CParams, src []byte, measureDecomp bool) (ctime float64, cbytes int64, dtime float64, err error)
}

// zstdS2Context is a Context backed by klauspost/compress's zstd and s2
// codecs, standing in for the original's BLOSC_ZSTD/BLOSC_LZ4/
// BLOSC_BLOSCLZ trio: BloscLZ/LZ4/LZ4HC map onto s2 (a speed-oriented
// LZ77 codec), Zlib/Zstd map onto zstd at increasing levels.
type zstdS2Context struct{}

// NewContext returns a Context that performs real compression with
// klauspost/compress, so a driver exercising a Tuner measures genuine
// ctime/cbytes/dtime rather than simulated numbers.
func NewContext() Context { return zstdS2Context{} }

var _ Context = zstdS2Context{}

func encoderLevel(c btune.Codec, clevel int) zstd.EncoderLevel {
	switch {
	case c == btune.Zstd && clevel >= 7:
		return zstd.SpeedBestCompression
	case c == btune.Zstd && clevel >= 4:
		return zstd.SpeedBetterCompression
	case clevel <= 1:
		return zstd.SpeedFastest
	default:
		return zstd.SpeedDefault
	}
}

func (zstdS2Context) Trial(p btune.CParams, src []byte, measureDecomp bool) (ctime float64, cbytes int64, dtime float64, err error) {
	nthreads := p.NThreadsComp
	if nthreads < 1 {
		nthreads = 1
	}

	filtered := src
	if p.Filter == btune.ByteDelta && p.PrecedingFilter == btune.Shuffle && p.FilterMeta > 0 {
		filtered = deltaEncode(shuffle(src, int(p.FilterMeta)))
	}

	start := time.Now()
	var compressed []byte
	switch p.CompCode {
	case btune.Zlib, btune.Zstd:
		enc, encErr := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(encoderLevel(p.CompCode, p.CLevel)),
			zstd.WithEncoderConcurrency(nthreads))
		if encErr != nil {
			return 0, 0, 0, fmt.Errorf("hostctx: zstd writer: %w", encErr)
		}
		compressed = enc.EncodeAll(filtered, nil)
		enc.Close()
	default: // BloscLZ, LZ4, LZ4HC map onto s2
		if p.CompCode == btune.LZ4HC {
			compressed = s2.EncodeBetter(nil, filtered)
		} else {
			compressed = s2.Encode(nil, filtered)
		}
	}
	ctime = time.Since(start).Seconds()
	cbytes = int64(len(compressed))

	if !measureDecomp {
		return ctime, cbytes, 0, nil
	}

	start = time.Now()
	var back []byte
	switch p.CompCode {
	case btune.Zlib, btune.Zstd:
		dec, decErr := zstd.NewReader(nil, zstd.WithDecoderConcurrency(nthreads))
		if decErr != nil {
			return ctime, cbytes, 0, fmt.Errorf("hostctx: zstd reader: %w", decErr)
		}
		back, err = dec.DecodeAll(compressed, nil)
		dec.Close()
	default:
		back, err = s2.Decode(nil, compressed)
	}
	dtime = time.Since(start).Seconds()
	if err != nil {
		return ctime, cbytes, dtime, fmt.Errorf("hostctx: decompress: %w", err)
	}
	if p.Filter == btune.ByteDelta && p.PrecedingFilter == btune.Shuffle && p.FilterMeta > 0 {
		back = unshuffle(deltaDecode(back), int(p.FilterMeta))
	}
	if len(back) != len(src) {
		return ctime, cbytes, dtime, fmt.Errorf("hostctx: round-trip size mismatch: got %d want %d", len(back), len(src))
	}
	if string(back) != string(src) {
		return ctime, cbytes, dtime, fmt.Errorf("hostctx: round-trip content mismatch")
	}
	return ctime, cbytes, dtime, nil
}

// shuffle performs Blosc2's classic byte shuffle: it groups together the
// byte at the same offset within each typesize-sized element, which is
// what makes the subsequent delta pass (and the codec after it) effective
// on typed numeric data. Data whose length isn't a multiple of typesize is
// passed through unfiltered, matching the original's handling of a
// trailing partial element.
func shuffle(src []byte, typesize int) []byte {
	n := len(src)
	if typesize <= 1 || n%typesize != 0 {
		return append([]byte(nil), src...)
	}
	nelem := n / typesize
	out := make([]byte, n)
	for i := 0; i < nelem; i++ {
		for j := 0; j < typesize; j++ {
			out[j*nelem+i] = src[i*typesize+j]
		}
	}
	return out
}

// unshuffle inverts shuffle.
func unshuffle(src []byte, typesize int) []byte {
	n := len(src)
	if typesize <= 1 || n%typesize != 0 {
		return append([]byte(nil), src...)
	}
	nelem := n / typesize
	out := make([]byte, n)
	for i := 0; i < nelem; i++ {
		for j := 0; j < typesize; j++ {
			out[i*typesize+j] = src[j*nelem+i]
		}
	}
	return out
}

// deltaEncode is BYTEDELTA's second pass: each byte becomes its difference
// from the previous byte, which turns runs and arithmetic progressions
// (common once same-offset bytes are grouped by shuffle) into runs of
// small or repeated values.
func deltaEncode(src []byte) []byte {
	out := make([]byte, len(src))
	var prev byte
	for i, b := range src {
		out[i] = b - prev
		prev = b
	}
	return out
}

// deltaDecode inverts deltaEncode.
func deltaDecode(src []byte) []byte {
	out := make([]byte, len(src))
	var prev byte
	for i, b := range src {
		prev += b
		out[i] = prev
	}
	return out
}
