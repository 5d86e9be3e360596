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

// Package oceantrsp computes transport quantities (volume, heat, salt, and
// freshwater) of ocean model output across geographic sections such as
// straits and circumpolar passages.
//
// Model fields live on a curvilinear, logically rectangular grid made up of
// one or more tiles (faces). A section is a line across that grid; transport
// across it is computed by masking the grid-cell edges the line crosses,
// applying a sign to each crossing so that the summed flux is measured in a
// single consistent direction, and summing the masked fluxes at each depth
// level and time step.
//
// All gridded data are held in sparse.DenseArray values with a fixed
// trailing-axis convention: the last axis is the in-tile x index i, then
// moving left the in-tile y index j, the tile index, and the depth level k.
// Time, when present, is the leading axis. Quantities staggered to the west
// or south cell edge use the same index ranges as cell centers (finite
// volume convention: edge i_g sits between centers i-1 and i, edge j_g
// between centers j-1 and j, and depth interface k_l above center k).
package oceantrsp

// Unit conversions and physical constants used by the transport
// calculations.
const (
	// MetersCubedToSverdrups converts a volumetric flux in m³/s
	// to Sverdrups.
	MetersCubedToSverdrups = 1e-6

	// WattsToPetawatts converts a heat flux in W to PW.
	WattsToPetawatts = 1e-15

	// RhoConst is the reference seawater density [kg/m³].
	RhoConst = 1029.

	// HeatCapacity is the specific heat capacity of seawater [J/(kg K)].
	HeatCapacity = 4000.

	// DefaultSref is the default reference salinity [psu] for freshwater
	// transport.
	DefaultSref = 35.
)
