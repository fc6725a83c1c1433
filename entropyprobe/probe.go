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

// Package entropyprobe implements BTune's entropy-probing codec (§4.8): a
// compression-free byte scanner that simulates a BloscLZ-style
// literal/match encoding to estimate a block's compression ratio, without
// ever producing compressed bytes. It is used once, on the first chunk's
// blocks, to bootstrap the Predictor Adapter's initial codec/filter
// guess.
package entropyprobe

import (
	"encoding/binary"
	"time"

	"github.com/dchest/siphash"
)

const (
	hashLog2       = 12
	hashLen        = 1 << hashLog2
	maxCopy        = 32
	maxDistance    = 8191
	maxFarDistance = 65535 + maxDistance - 1
)

// Result is one block's entropy-probe instrumentation.
type Result struct {
	// CRatio is the estimated uncompressed/compressed byte ratio.
	CRatio float64
	// CSpeed is the scan's throughput, in MiB/s.
	CSpeed float64
	// Special marks a degenerate block (empty or a single repeated byte)
	// for which the literal/match scan was skipped.
	Special bool
}

// Probe estimates block's compressibility without compressing it,
// matching the original's b2ep_register_codec encoder: get_cratio
// followed by a cbytes-from-ratio conversion, reported here as a ratio
// directly since BTune only ever consumes cratio/cspeed, not cbytes.
func Probe(block []byte) Result {
	if len(block) == 0 {
		return Result{CRatio: 1, Special: true}
	}
	if isConstant(block) {
		return Result{CRatio: float64(len(block)), Special: true}
	}

	start := time.Now()
	cratio := getCRatio(block, 3, 3)
	elapsed := time.Since(start).Seconds()

	// The original clamps cbytes to input_len (never expand); expressed
	// as a ratio, that means cratio never drops below 1.
	if cratio < 1 {
		cratio = 1
	}

	speed := 0.0
	if elapsed > 0 {
		speed = float64(len(block)) / elapsed / (1024 * 1024)
	}
	return Result{CRatio: cratio, CSpeed: speed}
}

func isConstant(block []byte) bool {
	first := block[0]
	for _, b := range block[1:] {
		if b != first {
			return false
		}
	}
	return true
}

// hashSeq hashes a 4-byte little-endian sequence into a hashLen-entry
// table index. The original uses a scratch multiplicative hash
// (seq * 2654435761) >> (32-HASH_LOG2); this Go port uses a siphash of
// the same 4 bytes and keeps the top HASH_LOG2 bits, for the same
// "spread short keys across a small table" role siphash plays elsewhere
// in the corpus.
func hashSeq(seq uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], seq)
	h := siphash.Hash(0, 0, buf[:])
	return uint32(h >> (64 - hashLog2))
}

// getRun extends a match against a run of a single repeated byte
// (distance-biased to 0 by the caller), matching get_run.
func getRun(ip, ipBound int, data []byte, ref int) int {
	x := data[ip-1]
	for ip < ipBound && data[ref] == x {
		ip++
		ref++
	}
	return ip
}

// getMatch extends a literal match byte by byte, matching get_match.
func getMatch(ip, ipBound int, data []byte, ref int) int {
	for ip < ipBound && data[ref] == data[ip] {
		ip++
		ref++
	}
	return ip
}

// getCRatio simulates a BloscLZ-style single-pass literal/match encoding
// of block[:limit] (limit capped at hashLen, the same tradeoff the
// original makes between probing thoroughness and probe cost) and
// returns input_len/output_counter as the estimated compression ratio.
// It directly mirrors get_cratio in blosc2_entropy_prober.c.
func getCRatio(block []byte, minlen, ipshift int) float64 {
	n := len(block)
	limit := n
	if limit > hashLen {
		limit = hashLen
	}
	ipBound := limit - 1
	ipLimit := limit - 12

	htab := make([]uint16, hashLen)

	ip := 0
	oc := 5
	copyRun := 4

	literal := func() {
		oc++
		ip++
		copyRun++
		if copyRun == maxCopy {
			copyRun = 0
			oc++
		}
	}

	for ip < ipLimit {
		anchor := ip

		seq := binary.LittleEndian.Uint32(block[ip : ip+4])
		hval := hashSeq(seq)
		ref := int(htab[hval])
		distance := anchor - ref
		htab[hval] = uint16(anchor)

		if distance == 0 || distance >= maxFarDistance {
			literal()
			continue
		}

		if binary.LittleEndian.Uint32(block[ref:ref+4]) != seq {
			literal()
			continue
		}
		ref += 4
		ip = anchor + 4
		distance--

		ip = getRunOrMatch(ip, ipBound, block, ref, distance == 0)
		ip -= ipshift
		length := ip - anchor
		if length < minlen {
			ip = anchor
			literal()
			continue
		}

		if copyRun == 0 {
			oc--
		}
		copyRun = 0

		if distance < maxDistance {
			if length >= 7 {
				oc += (length-7)/255 + 1
			}
			oc += 2
		} else {
			if length >= 7 {
				oc += (length-7)/255 + 1
			}
			oc += 4
		}

		if ip+4 <= n {
			seq = binary.LittleEndian.Uint32(block[ip : ip+4])
			hval = hashSeq(seq)
			htab[hval] = uint16(ip)
		}
		ip += 2
		oc++
	}

	ic := float64(ip)
	if oc <= 0 {
		oc = 1
	}
	return ic / float64(oc)
}

func getRunOrMatch(ip, ipBound int, data []byte, ref int, run bool) int {
	if run {
		return getRun(ip, ipBound, data, ref)
	}
	return getMatch(ip, ipBound, data, ref)
}
