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

func TestScorePositive(t *testing.T) {
	cfg := DefaultConfig()
	modes := []PerfMode{PerfComp, PerfDecomp, PerfBalanced}
	for _, m := range modes {
		cfg.PerfMode = m
		got := score(cfg, 1.5, 1<<20, 0.7)
		if got <= 0 {
			t.Errorf("perf mode %s: score(%v) = %v, want > 0", m, cfg, got)
		}
	}
}

func TestScorePerfMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bandwidth = GBPS10

	cfg.PerfMode = PerfComp
	comp := score(cfg, 2, 1<<20, 5)
	cfg.PerfMode = PerfDecomp
	decomp := score(cfg, 2, 1<<20, 5)
	cfg.PerfMode = PerfBalanced
	balanced := score(cfg, 2, 1<<20, 5)

	if comp >= balanced {
		t.Errorf("PerfComp score %v should be less than PerfBalanced score %v (balanced adds dtime)", comp, balanced)
	}
	if decomp >= balanced {
		t.Errorf("PerfDecomp score %v should be less than PerfBalanced score %v (balanced adds ctime)", decomp, balanced)
	}
}

func TestScoreRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	ctime, dtime := 1.2, 0.4
	var cbytes int64 = 65536
	want := score(cfg, ctime, cbytes, dtime)
	got := score(cfg, ctime, cbytes, dtime)
	if got != want {
		t.Errorf("score is not deterministic: got %v, want %v", got, want)
	}
}
