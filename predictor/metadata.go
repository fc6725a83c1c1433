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
	"fmt"
	"os"

	"github.com/blosc2/btune"
	"github.com/blosc2/btune/entropyprobe"
)

// Norm holds the per-feature normalization statistics (§6.4): a value v
// is normalized as (v-mean)/std, then (v-min)/max.
type Norm struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func (n Norm) normalize(v float64) float64 {
	v -= n.Mean
	v /= n.Std
	v -= n.Min
	v /= n.Max
	return v
}

// Category maps one classifier output index to a concrete (codec,
// filter) pair.
type Category struct {
	Codec  btune.Codec  `json:"-"`
	Filter btune.Filter `json:"-"`
}

// UnmarshalJSON accepts the original's [codec_id, filter_id] two-element
// array encoding for each category.
func (c *Category) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("predictor: decoding category: %w", err)
	}
	c.Codec = btune.Codec(pair[0])
	c.Filter = btune.Filter(pair[1])
	return nil
}

// Metadata is the normalization statistics and category table a host
// loads alongside a trained model (§6.4), matching metadata_t's fields
// in the original (cratio/speed norm dicts, categories table).
type Metadata struct {
	CRatio     Norm       `json:"cratio"`
	CSpeed     Norm       `json:"speed"`
	Categories []Category `json:"categories"`
}

// LoadMetadata reads and parses a metadata JSON file, matching
// read_metadata/read_dict in the original.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("predictor: reading metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("predictor: parsing metadata: %w", err)
	}
	return &m, nil
}

// Adapter ties a Predictor to loaded Metadata and implements the
// Predictor Adapter's chunk-0 bootstrap procedure (§4.9).
type Adapter struct {
	Model    Predictor
	Metadata *Metadata
}

// Bootstrap normalizes every block's entropy-probe result, asks Model to
// vote on a category per block, and returns the codec/filter pair that
// won the most votes, matching get_best_codec_for_chunk's per-block
// tally. ok is false (and codec/filter are zero) when there is nothing
// to vote on or Bootstrap is otherwise unable to produce a category,
// mirroring btune_model_inference's soft-failure return of -1 when
// BTUNE_METADATA/BTUNE_MODEL_* are unset — callers fall back to the
// default candidate sets rather than treating this as fatal.
func (a *Adapter) Bootstrap(blocks []entropyprobe.Result) (codec btune.Codec, filter btune.Filter, ok bool) {
	if a == nil || a.Model == nil || a.Metadata == nil || len(a.Metadata.Categories) == 0 {
		return 0, 0, false
	}

	votes := make([]int, len(a.Metadata.Categories))
	counted := 0
	for _, b := range blocks {
		if b.Special {
			continue
		}
		cratio := a.Metadata.CRatio.normalize(b.CRatio)
		cspeed := a.Metadata.CSpeed.normalize(b.CSpeed)
		best := BestCategory(a.Model, float32(cratio), float32(cspeed))
		if best < 0 || best >= len(votes) {
			continue
		}
		votes[best]++
		counted++
	}
	if counted == 0 {
		return 0, 0, false
	}

	winner, max := -1, 0
	for i, v := range votes {
		if v > max {
			max = v
			winner = i
		}
	}
	if winner < 0 {
		return 0, 0, false
	}
	cat := a.Metadata.Categories[winner]
	return cat.Codec, cat.Filter, true
}
