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
	"math"

	"github.com/ctessum/sparse"
)

// Sign selects which flux directions a depth-level reduction includes.
type Sign string

const (
	// SignNet includes all crossings, yielding the net transport.
	SignNet Sign = ""
	// SignPositive includes only crossings in the positive section
	// direction (inflow).
	SignPositive Sign = "positive"
	// SignNegative includes only crossings in the negative section
	// direction (outflow).
	SignNegative Sign = "negative"
)

// trspZName is the generic profile variable name produced by the
// reducers; the quantity calculations rename it.
const trspZName = "trsp_z"

// wetLookup returns a lookup into an optional wet-point mask which may be
// rank 3 [tile][j][i] or rank 4 [k][tile][j][i]. A nil mask is all wet.
func wetLookup(wet *sparse.DenseArray, s fluxShape, position string) (func(k, h int) bool, error) {
	if wet == nil {
		return func(int, int) bool { return true }, nil
	}
	nh := s.ntile * s.nj * s.ni
	switch len(wet.Shape) {
	case 3:
		if err := checkHorizShape(wet, s); err != nil {
			return nil, fmt.Errorf("wet-point mask %s %v", position, err)
		}
		return func(k, h int) bool { return wet.Elements[h] != 0 }, nil
	case 4:
		if wet.Shape[0] != s.nk || wet.Shape[1] != s.ntile || wet.Shape[2] != s.nj || wet.Shape[3] != s.ni {
			break
		}
		return func(k, h int) bool { return wet.Elements[k*nh+h] != 0 }, nil
	}
	return nil, fmt.Errorf("wet-point mask %s must have shape [%d %d %d] or [%d %d %d %d] but has %v",
		position, s.ntile, s.nj, s.ni, s.nk, s.ntile, s.nj, s.ni, wet.Shape)
}

// attachDepth copies the depth coordinate Z from coords onto tr when
// present and consistent with the number of depth levels.
func attachDepth(tr *Transport, coords *Dataset, nk int) {
	if coords == nil {
		return
	}
	if z, ok := coords.Data["Z"]; ok && len(z.Data.Shape) == 1 && z.Data.Shape[0] == nk {
		tr.AddVariable("Z", []string{"k"}, "depth of grid cell center", "m", z.Data.Copy())
	}
}

// SectionTrspAtDepth computes the transport of the vector flux field
// (xfld at west edges, yfld at south edges) across the section defined by
// the signed masks maskW and maskS, summed over all horizontal and tile
// axes to one value per depth level (and time step, if the fields carry a
// time axis).
//
// If coords carries wet-point masks maskW/maskS, the section masks are
// restricted to wet points; dry points are treated as missing rather than
// zero. sign optionally restricts the reduction to crossings in one
// direction only. An all-zero mask yields an exactly zero profile.
func SectionTrspAtDepth(xfld, yfld, maskW, maskS *sparse.DenseArray, coords *Dataset, sign Sign) (*Transport, error) {
	if maskW == nil || maskS == nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: west- and south-edge masks are required")
	}
	s, err := fluxShapeOf(xfld)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: x field: %v", err)
	}
	if err := sameShape(xfld, yfld); err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: %v", err)
	}
	if err := checkHorizShape(maskW, s); err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: maskW %v", err)
	}
	if err := checkHorizShape(maskS, s); err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: maskS %v", err)
	}
	switch sign {
	case SignNet, SignPositive, SignNegative:
	default:
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: invalid sign %q", string(sign))
	}

	var wetW, wetS *sparse.DenseArray
	if coords.Has("maskW") {
		wetW, _ = coords.Get("maskW")
	}
	if coords.Has("maskS") {
		wetS, _ = coords.Get("maskS")
	}
	wetWAt, err := wetLookup(wetW, s, "maskW")
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: %v", err)
	}
	wetSAt, err := wetLookup(wetS, s, "maskS")
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAtDepth: %v", err)
	}

	var out *sparse.DenseArray
	var dims []string
	if s.hasTime {
		out = sparse.ZerosDense(s.nt, s.nk)
		dims = []string{"time", "k"}
	} else {
		out = sparse.ZerosDense(s.nk)
		dims = []string{"k"}
	}

	nh := s.ntile * s.nj * s.ni
	x := 0
	for t := 0; t < s.nt; t++ {
		for k := 0; k < s.nk; k++ {
			sum := 0.
			for h := 0; h < nh; h++ {
				if mw := maskW.Elements[h]; mw != 0 && wetWAt(k, h) {
					if c := xfld.Elements[x+h] * mw; includeSign(c, sign) {
						sum += c
					}
				}
				if ms := maskS.Elements[h]; ms != 0 && wetSAt(k, h) {
					if c := yfld.Elements[x+h] * ms; includeSign(c, sign) {
						sum += c
					}
				}
			}
			if s.hasTime {
				out.Elements[t*s.nk+k] = sum
			} else {
				out.Elements[k] = sum
			}
			x += nh
		}
	}

	tr := new(Transport)
	tr.AddVariable(trspZName, dims,
		"transport of vector quantity across section at each depth level", "", out)
	attachDepth(tr, coords, s.nk)
	return tr, nil
}

func includeSign(c float64, sign Sign) bool {
	switch sign {
	case SignPositive:
		return c > 0
	case SignNegative:
		return c < 0
	}
	return true
}

// SectionTrspAcross computes the transport of the vector flux field
// interpolated to cell centers and restricted to the section's center
// mask, retaining the along-section structure: the tile, j and i axes are
// collapsed into a single along-section index covering the mask cells
// that have valid data at some depth, and all other positions are dropped
// rather than zero-filled. Entries at depths where a retained cell is dry
// are missing (NaN).
//
// If coords carries a wet-point mask maskC it is intersected with the
// section mask. grid supplies the 2-D vector interpolation, with
// out-of-domain neighbors treated as zero.
func SectionTrspAcross(xfld, yfld, maskC *sparse.DenseArray, grid GridOperator, coords *Dataset) (*Transport, error) {
	if grid == nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: a GridOperator is required")
	}
	if maskC == nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: a center mask is required")
	}
	s, err := fluxShapeOf(xfld)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: x field: %v", err)
	}
	if err := sameShape(xfld, yfld); err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: %v", err)
	}
	if err := checkHorizShape(maskC, s); err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: maskC %v", err)
	}

	var wetC *sparse.DenseArray
	if coords.Has("maskC") {
		wetC, _ = coords.Get("maskC")
	}
	wetCAt, err := wetLookup(wetC, s, "maskC")
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: %v", err)
	}

	xc, yc, err := grid.Interp2DVector(xfld, yfld, BoundaryFill)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.SectionTrspAcross: %v", err)
	}

	// Retain mask cells with valid data at some depth, in ascending
	// (tile, j, i) order.
	nh := s.ntile * s.nj * s.ni
	var cells []CellIndex
	var cellH []int
	for h := 0; h < nh; h++ {
		if maskC.Elements[h] == 0 {
			continue
		}
		valid := false
		for k := 0; k < s.nk; k++ {
			if wetCAt(k, h) {
				valid = true
				break
			}
		}
		if !valid {
			continue
		}
		cells = append(cells, CellIndex{
			Tile: h / (s.nj * s.ni),
			J:    (h / s.ni) % s.nj,
			I:    h % s.ni,
		})
		cellH = append(cellH, h)
	}

	var out *sparse.DenseArray
	var dims []string
	if s.hasTime {
		out = sparse.ZerosDense(s.nt, s.nk, len(cells))
		dims = []string{"time", "k", "sec"}
	} else {
		out = sparse.ZerosDense(s.nk, len(cells))
		dims = []string{"k", "sec"}
	}
	x := 0
	for t := 0; t < s.nt; t++ {
		for k := 0; k < s.nk; k++ {
			for n, h := range cellH {
				v := math.NaN()
				if wetCAt(k, h) {
					v = xc.Elements[x+h] + yc.Elements[x+h]
				}
				out.Elements[(t*s.nk+k)*len(cells)+n] = v
			}
			x += nh
		}
	}

	tr := new(Transport)
	tr.Cells = cells
	tr.AddVariable(trspZName, dims,
		"transport of vector quantity across section at each depth level", "", out)
	attachDepth(tr, coords, s.nk)
	return tr, nil
}
