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
	"fmt"

	"github.com/ctessum/sparse"
)

// fluxShape describes the axes of a flux field following the package
// trailing-axis convention: [k][tile][j][i], optionally with a leading
// time axis.
type fluxShape struct {
	nt, nk, ntile, nj, ni int
	hasTime               bool
}

func fluxShapeOf(a *sparse.DenseArray) (fluxShape, error) {
	switch len(a.Shape) {
	case 4:
		return fluxShape{
			nt: 1, nk: a.Shape[0], ntile: a.Shape[1], nj: a.Shape[2], ni: a.Shape[3],
		}, nil
	case 5:
		return fluxShape{
			nt: a.Shape[0], nk: a.Shape[1], ntile: a.Shape[2], nj: a.Shape[3], ni: a.Shape[4],
			hasTime: true,
		}, nil
	}
	return fluxShape{}, fmt.Errorf("flux field must have rank 4 [k][tile][j][i] "+
		"or rank 5 [time][k][tile][j][i] but has shape %v", a.Shape)
}

func sameShape(a, b *sparse.DenseArray) error {
	if len(a.Shape) != len(b.Shape) {
		return fmt.Errorf("mismatched ranks %d and %d", len(a.Shape), len(b.Shape))
	}
	for i, s := range a.Shape {
		if b.Shape[i] != s {
			return fmt.Errorf("mismatched shapes %v and %v", a.Shape, b.Shape)
		}
	}
	return nil
}

// addFields returns the element-wise sum a + b.
func addFields(a, b *sparse.DenseArray) (*sparse.DenseArray, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}
	out := a.Copy()
	out.AddDense(b)
	return out, nil
}

// scaleEdgeFlux converts an edge velocity [m/s] to a volumetric flux
// [m³/s] by multiplying with the depth-level thickness drF [k],
// broadcast across time, tile, j and i, and the cell-edge length
// edge [tile][j][i], broadcast across time and k.
func scaleEdgeFlux(vel, drF, edge *sparse.DenseArray) (*sparse.DenseArray, error) {
	s, err := fluxShapeOf(vel)
	if err != nil {
		return nil, err
	}
	if len(drF.Shape) != 1 || drF.Shape[0] != s.nk {
		return nil, fmt.Errorf("depth thickness must have shape [%d] but has %v", s.nk, drF.Shape)
	}
	if err := checkHorizShape(edge, s); err != nil {
		return nil, fmt.Errorf("edge length %v", err)
	}
	out := vel.Copy()
	x := 0
	for t := 0; t < s.nt; t++ {
		for k := 0; k < s.nk; k++ {
			dz := drF.Elements[k]
			for h := 0; h < s.ntile*s.nj*s.ni; h++ {
				out.Elements[x] *= dz * edge.Elements[h]
				x++
			}
		}
	}
	return out, nil
}

// divideByThickness divides a flux field by the depth-level thickness
// drF [k], broadcast across the other axes.
func divideByThickness(a, drF *sparse.DenseArray) (*sparse.DenseArray, error) {
	s, err := fluxShapeOf(a)
	if err != nil {
		return nil, err
	}
	if len(drF.Shape) != 1 || drF.Shape[0] != s.nk {
		return nil, fmt.Errorf("depth thickness must have shape [%d] but has %v", s.nk, drF.Shape)
	}
	out := a.Copy()
	x := 0
	for t := 0; t < s.nt; t++ {
		for k := 0; k < s.nk; k++ {
			dz := drF.Elements[k]
			for h := 0; h < s.ntile*s.nj*s.ni; h++ {
				out.Elements[x] /= dz
				x++
			}
		}
	}
	return out, nil
}

// fwAdvFlux builds an advective freshwater flux [m³/s]:
// (vel + velStar) · edge · drF · (Sref − saltEdge)/Sref, where vel is the
// resolved edge velocity, velStar the eddy-induced velocity at the same
// position, and saltEdge the salinity interpolated to that position.
// velStar may omit the time axis of vel, in which case it is broadcast
// across time.
func fwAdvFlux(vel, velStar, edge, drF, saltEdge *sparse.DenseArray, sref float64) (*sparse.DenseArray, error) {
	s, err := fluxShapeOf(vel)
	if err != nil {
		return nil, err
	}
	if err := sameShape(vel, saltEdge); err != nil {
		return nil, fmt.Errorf("salinity %v", err)
	}
	starStatic := false
	if err := sameShape(vel, velStar); err != nil {
		if s.hasTime && len(velStar.Shape) == 4 &&
			velStar.Shape[0] == s.nk && velStar.Shape[1] == s.ntile &&
			velStar.Shape[2] == s.nj && velStar.Shape[3] == s.ni {
			starStatic = true
		} else {
			return nil, fmt.Errorf("eddy velocity %v", err)
		}
	}
	if len(drF.Shape) != 1 || drF.Shape[0] != s.nk {
		return nil, fmt.Errorf("depth thickness must have shape [%d] but has %v", s.nk, drF.Shape)
	}
	if err := checkHorizShape(edge, s); err != nil {
		return nil, fmt.Errorf("edge length %v", err)
	}
	nh := s.ntile * s.nj * s.ni
	out := sparse.ZerosDense(vel.Shape...)
	x := 0
	for t := 0; t < s.nt; t++ {
		for k := 0; k < s.nk; k++ {
			dz := drF.Elements[k]
			for h := 0; h < nh; h++ {
				star := velStar.Elements[x]
				if starStatic {
					star = velStar.Elements[k*nh+h]
				}
				out.Elements[x] = (vel.Elements[x] + star) * edge.Elements[h] * dz *
					(sref - saltEdge.Elements[x]) / sref
				x++
			}
		}
	}
	return out, nil
}

// checkHorizShape verifies that a is a rank-3 [tile][j][i] field matching
// the horizontal extent of s.
func checkHorizShape(a *sparse.DenseArray, s fluxShape) error {
	if len(a.Shape) != 3 || a.Shape[0] != s.ntile || a.Shape[1] != s.nj || a.Shape[2] != s.ni {
		return fmt.Errorf("must have shape [%d %d %d] but has %v",
			s.ntile, s.nj, s.ni, a.Shape)
	}
	return nil
}
