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

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PerfMode != PerfBalanced || cfg.CompMode != CompBalanced {
		t.Errorf("DefaultConfig() = %+v, want PerfBalanced/CompBalanced", cfg)
	}
	if cfg.Behaviour.NHardsBeforeStop != 1 || cfg.Behaviour.NSoftsBeforeHard != 5 {
		t.Errorf("DefaultConfig().Behaviour = %+v, want NHardsBeforeStop=1, NSoftsBeforeHard=5", cfg.Behaviour)
	}
}

func TestDefaultCandidatesHCR(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompMode = CompHCR
	cs := defaultCandidates(cfg)
	want := map[Codec]bool{Zstd: true, Zlib: true}
	if len(cs.codecs) != len(want) {
		t.Fatalf("HCR candidates = %v, want exactly %v", cs.codecs, want)
	}
	for _, c := range cs.codecs {
		if !want[c] {
			t.Errorf("HCR candidates include unexpected codec %s", c)
		}
	}
}

func TestDefaultCandidatesBalanced(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompMode = CompBalanced
	cs := defaultCandidates(cfg)
	if !containsCodec(cs.codecs, LZ4) || !containsCodec(cs.codecs, BloscLZ) {
		t.Errorf("BALANCED candidates = %v, want LZ4 and BloscLZ", cs.codecs)
	}
	if containsCodec(cs.codecs, LZ4HC) {
		t.Errorf("BALANCED/PerfBalanced candidates should not include LZ4HC: %v", cs.codecs)
	}
}

func TestDefaultCandidatesDecomp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerfMode = PerfDecomp
	cs := defaultCandidates(cfg)
	if !containsCodec(cs.codecs, LZ4HC) {
		t.Errorf("PerfDecomp candidates = %v, want LZ4HC included", cs.codecs)
	}
}

func TestAddCodecDedup(t *testing.T) {
	cs := candidateSet{}
	addCodec(&cs, LZ4)
	addCodec(&cs, LZ4)
	if len(cs.codecs) != 1 {
		t.Errorf("addCodec did not dedup: %v", cs.codecs)
	}
}

func TestParsePerfMode(t *testing.T) {
	if m := ParsePerfMode("comp", nil); m != PerfComp {
		t.Errorf("ParsePerfMode(comp) = %s, want PerfComp", m)
	}
	if m := ParsePerfMode("bogus", nil); m != PerfBalanced {
		t.Errorf("ParsePerfMode(bogus) = %s, want PerfBalanced fallback", m)
	}
}

func TestParseCompMode(t *testing.T) {
	if m := ParseCompMode("hcr", nil); m != CompHCR {
		t.Errorf("ParseCompMode(hcr) = %s, want CompHCR", m)
	}
	if m := ParseCompMode("bogus", nil); m != CompBalanced {
		t.Errorf("ParseCompMode(bogus) = %s, want CompBalanced fallback", m)
	}
}

func containsCodec(list []Codec, c Codec) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
