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

import "github.com/ctessum/unit"

// Dimensions of the transport quantities.
var (
	// volumeFluxDims is volume per time [m³/s].
	volumeFluxDims = unit.Dimensions{unit.LengthDim: 3, unit.TimeDim: -1}
	// powerDims is energy per time [W].
	powerDims = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3}
)

// SverdrupsToSI converts a volumetric transport in Sverdrups to a
// dimensioned SI value [m³/s].
func SverdrupsToSI(sv float64) *unit.Unit {
	return unit.New(sv/MetersCubedToSverdrups, volumeFluxDims)
}

// PetawattsToSI converts a heat transport in petawatts to a dimensioned
// SI value [W].
func PetawattsToSI(pw float64) *unit.Unit {
	return unit.New(pw/WattsToPetawatts, powerDims)
}
