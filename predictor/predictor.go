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

// Package predictor implements BTune's Predictor Adapter (§4.9): it
// normalizes entropy-probe output and asks an external, opaque classifier
// to vote on a (codec, filter) category for the first chunk, and returns
// the winning pair, which a host can pass to Tuner.SetCandidates.
//
// Training and running the classifier itself is out of scope (spec.md
// §1); Predictor is the narrow capability interface a host plugs a real
// model runtime into.
package predictor

// NCategories mirrors metadata_t's fixed categories[30] in the original.
// Nothing in this package enforces it: Metadata.Categories may hold any
// number of entries.
const NCategories = 30

// Predictor is the capability a host's classifier runtime must provide:
// given a normalized (cratio, cspeed) pair, it returns one score per
// category, highest wins. This mirrors get_best_codec's "fill input
// tensor, invoke, argmax the output tensor" shape without committing to
// any particular inference runtime (TFLite in the original; no Go
// equivalent exists in the corpus, so the boundary itself is the
// contract — see DESIGN.md).
type Predictor interface {
	// Predict returns one score per category (len(result) == number of
	// categories configured in the loaded Metadata) for the normalized
	// (cratio, cspeed) pair.
	Predict(cratio, cspeed float32) []float32
}

// BestCategory runs p once and returns the index of the highest-scoring
// category, matching get_best_codec's argmax loop.
func BestCategory(p Predictor, cratio, cspeed float32) int {
	scores := p.Predict(cratio, cspeed)
	best := 0
	max := float32(-1)
	for i, v := range scores {
		if v > max {
			max = v
			best = i
		}
	}
	return best
}
