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
	"os"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// CellIndex locates one grid cell within the multi-tile grid.
type CellIndex struct {
	Tile, J, I int
}

// Transport is the result bundle of one transport computation: the
// per-depth-level transport profile, the depth-integrated total, and, in
// depth-level mode, the masks that defined the section. A Transport is
// constructed fresh by each calculation and never mutated after return.
type Transport struct {
	// Name is the section name, if one was supplied.
	Name string

	// Cells holds the along-section cell indices retained by an
	// along-section computation, in ascending (tile, j, i) order. It is
	// nil in depth-level mode.
	Cells []CellIndex

	// Data is a map of the result variables, with the keys being the
	// variable names.
	Data map[string]Variable
}

// AddVariable adds data for a new variable to t.
func (t *Transport) AddVariable(name string, dims []string, description, units string, data *sparse.DenseArray) {
	if t.Data == nil {
		t.Data = make(map[string]Variable)
	}
	t.Data[name] = Variable{
		Dims:        dims,
		Description: description,
		Units:       units,
		Data:        data,
	}
}

// Get returns the data for the named result variable, or a
// MissingVariableError if t does not contain it.
func (t *Transport) Get(name string) (*sparse.DenseArray, error) {
	if t != nil {
		if v, ok := t.Data[name]; ok {
			return v.Data, nil
		}
	}
	return nil, MissingVariableError{Name: name}
}

// Dataset converts t to a Dataset for writing to a netcdf file. The
// section name becomes a global attribute and any along-section cell
// indices become the variables sec_tile, sec_j and sec_i.
func (t *Transport) Dataset() *Dataset {
	ds := new(Dataset)
	ds.Data = make(map[string]Variable, len(t.Data)+3)
	for name, v := range t.Data {
		ds.Data[name] = v
	}
	if t.Name != "" {
		ds.Attrs = map[string]string{"name": t.Name}
	}
	if len(t.Cells) > 0 {
		tiles := sparse.ZerosDense(len(t.Cells))
		js := sparse.ZerosDense(len(t.Cells))
		is := sparse.ZerosDense(len(t.Cells))
		for n, c := range t.Cells {
			tiles.Elements[n] = float64(c.Tile)
			js.Elements[n] = float64(c.J)
			is.Elements[n] = float64(c.I)
		}
		ds.AddVariable("sec_tile", []string{"sec"}, "tile index of section cell", "", tiles)
		ds.AddVariable("sec_j", []string{"sec"}, "j index of section cell", "", js)
		ds.AddVariable("sec_i", []string{"sec"}, "i index of section cell", "", is)
	}
	return ds
}

// Write writes t to netcdf file w.
func (t *Transport) Write(w *os.File) error {
	return t.Dataset().Write(w)
}

// rename moves the variable old to new, attaching the given description
// and units and scaling the data by scale.
func (t *Transport) rename(old, new, description, units string, scale float64) error {
	v, ok := t.Data[old]
	if !ok {
		return MissingVariableError{Name: old}
	}
	delete(t.Data, old)
	v.Data.Scale(scale)
	v.Description = description
	v.Units = units
	t.Data[new] = v
	return nil
}

// sumOverDim sums v over the named dimension, skipping missing (NaN)
// entries, and returns a variable holding the remaining dimensions.
func sumOverDim(v Variable, dim string) (Variable, error) {
	idx := -1
	for i, d := range v.Dims {
		if d == dim {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Variable{}, fmt.Errorf("variable has no dimension %s (dims %v)", dim, v.Dims)
	}
	outDims := make([]string, 0, len(v.Dims)-1)
	outShape := make([]int, 0, len(v.Dims)-1)
	for i, d := range v.Dims {
		if i == idx {
			continue
		}
		outDims = append(outDims, d)
		outShape = append(outShape, v.Data.Shape[i])
	}
	out := sparse.ZerosDense(outShape...)

	n := v.Data.Shape[idx]
	inner := 1
	for _, s := range v.Data.Shape[idx+1:] {
		inner *= s
	}
	outer := 1
	for _, s := range v.Data.Shape[:idx] {
		outer *= s
	}
	if inner == 1 {
		// The summed dimension is innermost so each sum covers a
		// contiguous run. Along-section profiles carry NaN at depths
		// where a retained cell is dry, and missing entries are
		// skipped, never propagated.
		for o := 0; o < outer; o++ {
			run := v.Data.Elements[o*n : (o+1)*n]
			if !floats.HasNaN(run) {
				out.Elements[o] = floats.Sum(run)
				continue
			}
			sum := 0.
			for _, e := range run {
				if math.IsNaN(e) {
					continue
				}
				sum += e
			}
			out.Elements[o] = sum
		}
	} else {
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				sum := 0.
				for x := 0; x < n; x++ {
					e := v.Data.Elements[(o*n+x)*inner+in]
					if math.IsNaN(e) {
						continue
					}
					sum += e
				}
				out.Elements[o*inner+in] = sum
			}
		}
	}
	return Variable{Dims: outDims, Units: v.Units, Data: out}, nil
}
