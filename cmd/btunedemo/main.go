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

// Command btunedemo chunks an input file and drives a btune.Tuner against
// a real klauspost/compress-backed hostctx.Context, printing each
// chunk's chosen codec, filter and clevel with its measured compression
// time and ratio.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/blosc2/btune"
	"github.com/blosc2/btune/hostctx"
)

func main() {
	chunkSize := flag.Int64("chunksize", 4<<20, "chunk size in bytes")
	typeSize := flag.Int64("typesize", 8, "element size in bytes")
	perfMode := flag.String("perf", "balanced", "comp | decomp | balanced")
	compMode := flag.String("comp", "balanced", "hsp | balanced | hcr")
	measureDecomp := flag.Bool("decomp", false, "also measure decompression time")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: btunedemo [flags] <file>")
		os.Exit(2)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "btunedemo: %s\n", err)
		os.Exit(1)
	}

	warnLog := log.New(os.Stderr, "btunedemo: ", 0)
	cfg := btune.DefaultConfig()
	cfg.PerfMode = btune.ParsePerfMode(*perfMode, warnLog)
	cfg.CompMode = btune.ParseCompMode(*compMode, warnLog)

	maxThreads := hostctx.DetectMaxThreads()
	ctx := hostctx.NewContext()

	chunks := chunk(data, *chunkSize)
	if len(chunks) == 0 {
		return
	}

	tuner := btune.NewTuner(cfg, int64(len(chunks[0])), *typeSize, maxThreads)
	best := tuner.Init(nil)
	fmt.Printf("session %s: initial params %+v, max_threads=%d\n", tuner.SessionID, best, maxThreads)

	for i, c := range chunks {
		trial, err := tuner.NextCParams()
		if errors.Is(err, btune.ErrStopped) {
			fmt.Printf("chunk %d: tuner stopped\n", i)
			break
		}

		ctime, cbytes, dtime, err := ctx.Trial(trial, c, *measureDecomp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "chunk %d: %s\n", i, err)
			continue
		}
		if err := tuner.Update(ctime, cbytes, dtime); err != nil {
			fmt.Fprintf(os.Stderr, "chunk %d: %s\n", i, err)
		}

		ratio := float64(len(c)) / float64(cbytes)
		fmt.Printf("chunk %d: codec=%s filter=%s clevel=%d ctime=%.4fs cratio=%.2f\n",
			i, trial.CompCode, trial.Filter, trial.CLevel, ctime, ratio)
	}
	tuner.Free()
}

func chunk(data []byte, size int64) [][]byte {
	if size <= 0 {
		return [][]byte{data}
	}
	var out [][]byte
	for int64(len(data)) > 0 {
		n := size
		if n > int64(len(data)) {
			n = int64(len(data))
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}
