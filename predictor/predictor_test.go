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

package predictor

import (
	"encoding/json"
	"testing"

	"github.com/blosc2/btune"
	"github.com/blosc2/btune/entropyprobe"
)

type fixedPredictor struct {
	scores []float32
}

func (f fixedPredictor) Predict(cratio, cspeed float32) []float32 {
	return f.scores
}

func TestBestCategory(t *testing.T) {
	p := fixedPredictor{scores: []float32{0.1, 0.9, 0.2}}
	if got := BestCategory(p, 0, 0); got != 1 {
		t.Errorf("BestCategory = %d, want 1", got)
	}
}

func TestAdapterBootstrapPicksWinner(t *testing.T) {
	meta := &Metadata{
		CRatio: Norm{Mean: 0, Std: 1, Min: 0, Max: 1},
		CSpeed: Norm{Mean: 0, Std: 1, Min: 0, Max: 1},
		Categories: []Category{
			{Codec: btune.LZ4, Filter: btune.Shuffle},
			{Codec: btune.Zstd, Filter: btune.BitShuffle},
		},
	}
	// Every block votes for category 1 (Zstd/BitShuffle).
	adapter := &Adapter{
		Model:    fixedPredictor{scores: []float32{0, 1}},
		Metadata: meta,
	}
	blocks := []entropyprobe.Result{
		{CRatio: 2, CSpeed: 100},
		{CRatio: 3, CSpeed: 90},
	}
	codec, filter, ok := adapter.Bootstrap(blocks)
	if !ok {
		t.Fatalf("Bootstrap returned ok=false")
	}
	if codec != btune.Zstd || filter != btune.BitShuffle {
		t.Errorf("Bootstrap = (%s, %s), want (zstd, bitshuffle)", codec, filter)
	}
}

func TestAdapterBootstrapNoMetadata(t *testing.T) {
	adapter := &Adapter{}
	_, _, ok := adapter.Bootstrap(nil)
	if ok {
		t.Errorf("Bootstrap with no metadata should return ok=false")
	}
}

func TestAdapterBootstrapAllSpecialBlocks(t *testing.T) {
	meta := &Metadata{
		Categories: []Category{{Codec: btune.LZ4, Filter: btune.Shuffle}},
	}
	adapter := &Adapter{Model: fixedPredictor{scores: []float32{1}}, Metadata: meta}
	blocks := []entropyprobe.Result{{Special: true}, {Special: true}}
	_, _, ok := adapter.Bootstrap(blocks)
	if ok {
		t.Errorf("Bootstrap with only Special blocks should return ok=false")
	}
}

func TestCategoryUnmarshalJSON(t *testing.T) {
	raw := `{"cratio":{"mean":1,"std":1,"min":0,"max":1},
		"speed":{"mean":1,"std":1,"min":0,"max":1},
		"categories":[[0,1],[4,0]]}`
	var meta Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatalf("parsing metadata: %v", err)
	}
	if len(meta.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(meta.Categories))
	}
	if meta.Categories[0].Codec != btune.BloscLZ || meta.Categories[0].Filter != btune.Shuffle {
		t.Errorf("category 0 = %+v, want {BloscLZ, Shuffle}", meta.Categories[0])
	}
	if meta.Categories[1].Codec != btune.Zstd || meta.Categories[1].Filter != btune.NoFilter {
		t.Errorf("category 1 = %+v, want {Zstd, NoFilter}", meta.Categories[1])
	}
}
