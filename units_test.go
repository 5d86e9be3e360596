/*
Copyright © 2024 the OceanTrsp authors.
This file is part of OceanTrsp.

OceanTrsp is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

OceanTrsp is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with OceanTrsp.  If not, see <http://www.gnu.org/licenses/>.
*/

package oceantrsp

import (
	"math"
	"testing"
)

func TestSverdrupsToSI(t *testing.T) {
	v := SverdrupsToSI(0.01)
	if got := v.Value(); math.Abs(got/1e4-1) > testTolerance {
		t.Errorf("0.01 Sv is %g m³/s, want 1e4", got)
	}
	if dims := v.Dimensions(); !dims.Matches(volumeFluxDims) {
		t.Errorf("dimensions are %v, want %v", dims, volumeFluxDims)
	}
}

func TestPetawattsToSI(t *testing.T) {
	v := PetawattsToSI(2)
	if got := v.Value(); math.Abs(got/2e15-1) > testTolerance {
		t.Errorf("2 PW is %g W, want 2e15", got)
	}
	if dims := v.Dimensions(); !dims.Matches(powerDims) {
		t.Errorf("dimensions are %v, want %v", dims, powerDims)
	}
}
