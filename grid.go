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

// Axis identifies a grid axis for differential operations.
type Axis int

const (
	// AxisX is the in-tile west-east axis (index i).
	AxisX Axis = iota
	// AxisY is the in-tile south-north axis (index j).
	AxisY
	// AxisZ is the depth axis (index k).
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Boundary is the policy for grid positions whose neighbor falls outside
// the domain.
type Boundary int

const (
	// BoundaryFill treats out-of-domain neighbors as zero.
	BoundaryFill Boundary = iota
	// BoundaryExtend treats out-of-domain neighbors as equal to the
	// nearest in-domain value.
	BoundaryExtend
)

// GridOperator provides the differential operators of a model grid:
// interpolation and differencing between staggered grid positions, and
// interpolation of an edge-staggered vector field to cell centers.
// Implementations encode the grid topology, including any connectivity
// between tiles.
//
// The staggering direction of each operation is fixed: Interp and Diff with
// AxisX or AxisY map cell-center values to the west or south cell edge
// (edge index g holds the combination of centers g-1 and g), while AxisZ
// maps depth-interface values to the level center (center k holds the
// combination of interfaces k and k+1, interfaces being numbered
// downward from the surface).
type GridOperator interface {
	// Interp interpolates fld to the staggered position along axis.
	Interp(fld *sparse.DenseArray, axis Axis, boundary Boundary) (*sparse.DenseArray, error)

	// Diff differences fld to the staggered position along axis.
	Diff(fld *sparse.DenseArray, axis Axis, boundary Boundary) (*sparse.DenseArray, error)

	// Interp2DVector interpolates the edge-staggered vector field with
	// x component xfld (west edge) and y component yfld (south edge)
	// to cell centers.
	Interp2DVector(xfld, yfld *sparse.DenseArray, boundary Boundary) (xc, yc *sparse.DenseArray, err error)
}

// RectGrid is a GridOperator for a single-tile logically rectangular grid
// with no connectivity at the domain edges. Multi-tile grid topologies are
// expected to be supplied by the caller as their own GridOperator
// implementations.
type RectGrid struct{}

// axisDim locates the array dimension holding axis, following the package
// trailing-axis convention (i last, then j, tile, k).
func axisDim(shape []int, axis Axis) (int, error) {
	var offset int
	switch axis {
	case AxisX:
		offset = 1
	case AxisY:
		offset = 2
	case AxisZ:
		offset = 4
	default:
		return 0, fmt.Errorf("unknown axis %v", axis)
	}
	if len(shape) < offset {
		return 0, fmt.Errorf("axis %v requires rank >= %d but array has rank %d",
			axis, offset, len(shape))
	}
	return len(shape) - offset, nil
}

// apply1d runs f on every 1-D slice of fld along dimension dim, writing
// the result into a new array of the same shape. f receives the values
// along the slice via get and writes via set.
func apply1d(fld *sparse.DenseArray, dim int, f func(get func(int) float64, set func(int, float64), n int)) *sparse.DenseArray {
	out := sparse.ZerosDense(fld.Shape...)
	n := fld.Shape[dim]
	inner := 1
	for _, s := range fld.Shape[dim+1:] {
		inner *= s
	}
	outer := 1
	for _, s := range fld.Shape[:dim] {
		outer *= s
	}
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o * n * inner
			get := func(x int) float64 { return fld.Elements[base+x*inner+in] }
			set := func(x int, v float64) { out.Elements[base+x*inner+in] = v }
			f(get, set, n)
		}
	}
	return out
}

// Interp implements GridOperator.
func (g RectGrid) Interp(fld *sparse.DenseArray, axis Axis, boundary Boundary) (*sparse.DenseArray, error) {
	dim, err := axisDim(fld.Shape, axis)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp: RectGrid.Interp: %v", err)
	}
	if axis == AxisZ {
		return apply1d(fld, dim, func(get func(int) float64, set func(int, float64), n int) {
			for k := 0; k < n; k++ {
				below := 0.
				if k+1 < n {
					below = get(k + 1)
				} else if boundary == BoundaryExtend {
					below = get(k)
				}
				set(k, 0.5*(get(k)+below))
			}
		}), nil
	}
	return apply1d(fld, dim, func(get func(int) float64, set func(int, float64), n int) {
		for x := 0; x < n; x++ {
			prev := 0.
			if x > 0 {
				prev = get(x - 1)
			} else if boundary == BoundaryExtend {
				prev = get(0)
			}
			set(x, 0.5*(prev+get(x)))
		}
	}), nil
}

// Diff implements GridOperator.
func (g RectGrid) Diff(fld *sparse.DenseArray, axis Axis, boundary Boundary) (*sparse.DenseArray, error) {
	dim, err := axisDim(fld.Shape, axis)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp: RectGrid.Diff: %v", err)
	}
	if axis == AxisZ {
		return apply1d(fld, dim, func(get func(int) float64, set func(int, float64), n int) {
			for k := 0; k < n; k++ {
				below := 0.
				if k+1 < n {
					below = get(k + 1)
				} else if boundary == BoundaryExtend {
					below = get(k)
				}
				set(k, get(k)-below)
			}
		}), nil
	}
	return apply1d(fld, dim, func(get func(int) float64, set func(int, float64), n int) {
		for x := 0; x < n; x++ {
			prev := 0.
			if x > 0 {
				prev = get(x - 1)
			} else if boundary == BoundaryExtend {
				prev = get(0)
			}
			set(x, get(x)-prev)
		}
	}), nil
}

// Interp2DVector implements GridOperator. The x component moves from the
// west edge to the cell center (center i holds edges i and i+1) and the y
// component from the south edge to the cell center (center j holds edges
// j and j+1).
func (g RectGrid) Interp2DVector(xfld, yfld *sparse.DenseArray, boundary Boundary) (xc, yc *sparse.DenseArray, err error) {
	edgeToCenter := func(fld *sparse.DenseArray, axis Axis) (*sparse.DenseArray, error) {
		dim, err := axisDim(fld.Shape, axis)
		if err != nil {
			return nil, fmt.Errorf("oceantrsp: RectGrid.Interp2DVector: %v", err)
		}
		return apply1d(fld, dim, func(get func(int) float64, set func(int, float64), n int) {
			for x := 0; x < n; x++ {
				next := 0.
				if x+1 < n {
					next = get(x + 1)
				} else if boundary == BoundaryExtend {
					next = get(x)
				}
				set(x, 0.5*(get(x)+next))
			}
		}), nil
	}
	if xc, err = edgeToCenter(xfld, AxisX); err != nil {
		return nil, nil, err
	}
	if yc, err = edgeToCenter(yfld, AxisY); err != nil {
		return nil, nil, err
	}
	return xc, yc, nil
}
