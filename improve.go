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

// improveRule is one (cratio_threshold, score_threshold) disjunct of the
// Improvement Predicate (§4.2); improvement holds if cratioCoef and
// scoreCoef both exceed a rule's thresholds for any rule in the table.
type improveRule struct {
	cratio float64
	score  float64
}

var hspRules = []improveRule{
	{cratio: 1, score: 1},
	{cratio: 0.5, score: 2},
	{cratio: 0.67, score: 1.3},
	{cratio: 2, score: 0.7},
}

var balancedRules = []improveRule{
	{cratio: 1, score: 1},
	{cratio: 1.1, score: 0.8},
	{cratio: 1.3, score: 0.5},
}

func matchesAny(rules []improveRule, cratioCoef, scoreCoef float64) bool {
	for _, r := range rules {
		if cratioCoef > r.cratio && scoreCoef > r.score {
			return true
		}
	}
	return false
}

// hasImproved implements the Improvement Predicate (§4.2). scoreCoef is
// best.Score/new.Score and cratioCoef is new.CRatio/best.CRatio.
func hasImproved(mode CompMode, scoreCoef, cratioCoef float64) bool {
	switch mode {
	case CompHSP:
		return matchesAny(hspRules, cratioCoef, scoreCoef)
	case CompBalanced:
		return matchesAny(balancedRules, cratioCoef, scoreCoef)
	case CompHCR:
		return cratioCoef > 1
	default:
		return false
	}
}
