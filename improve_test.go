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

func TestHasImprovedHCR(t *testing.T) {
	cases := []struct {
		cratioCoef float64
		want       bool
	}{
		{0.9, false},
		{1.0, false},
		{1.01, true},
		{2, true},
	}
	for _, c := range cases {
		if got := hasImproved(CompHCR, 1, c.cratioCoef); got != c.want {
			t.Errorf("hasImproved(HCR, _, %v) = %v, want %v", c.cratioCoef, got, c.want)
		}
	}
}

func TestHasImprovedHSP(t *testing.T) {
	if !hasImproved(CompHSP, 1.5, 1.5) {
		t.Errorf("expected improvement under HSP for scoreCoef=1.5, cratioCoef=1.5")
	}
	if hasImproved(CompHSP, 0.9, 0.9) {
		t.Errorf("did not expect improvement under HSP for scoreCoef=0.9, cratioCoef=0.9")
	}
}

func TestHasImprovedBalanced(t *testing.T) {
	if !hasImproved(CompBalanced, 1.5, 1.5) {
		t.Errorf("expected improvement under BALANCED for scoreCoef=1.5, cratioCoef=1.5")
	}
	if hasImproved(CompBalanced, 1, 1) {
		t.Errorf("did not expect improvement under BALANCED at the (1,1) boundary")
	}
}
