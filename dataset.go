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
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Variable holds one named gridded field together with its dimension names
// and metadata.
type Variable struct {
	Dims        []string           // netcdf dimensions for this variable
	Description string             // variable description
	Units       string             // variable units
	Data        *sparse.DenseArray // variable data
}

// Dataset is a collection of named model fields, for example the physical
// output fields of one model run, or the coordinate information
// (cell thicknesses, edge lengths, wet-point masks) describing its grid.
type Dataset struct {
	// Attrs holds global attributes.
	Attrs map[string]string

	// Data is a map of the dataset variables, with the keys being the
	// variable names.
	Data map[string]Variable
}

// MissingVariableError indicates that a dataset lacks a variable that the
// requested calculation needs.
type MissingVariableError struct {
	Name string
}

func (e MissingVariableError) Error() string {
	return fmt.Sprintf("oceantrsp: missing variable %s", e.Name)
}

// AddVariable adds data for a new variable to d.
func (d *Dataset) AddVariable(name string, dims []string, description, units string, data *sparse.DenseArray) {
	if d.Data == nil {
		d.Data = make(map[string]Variable)
	}
	d.Data[name] = Variable{
		Dims:        dims,
		Description: description,
		Units:       units,
		Data:        data,
	}
}

// Has reports whether d contains the named variable.
func (d *Dataset) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Data[name]
	return ok
}

// Get returns the data for the named variable, or a MissingVariableError
// if d does not contain it.
func (d *Dataset) Get(name string) (*sparse.DenseArray, error) {
	if d != nil {
		if v, ok := d.Data[name]; ok {
			return v.Data, nil
		}
	}
	return nil, MissingVariableError{Name: name}
}

// ReadDataset loads the variables in a netcdf file.
func ReadDataset(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.ReadDataset: %v", err)
	}
	o := new(Dataset)
	o.Data = make(map[string]Variable)
	for _, a := range f.Header.Attributes("") {
		if s, ok := f.Header.GetAttribute("", a).(string); ok {
			if o.Attrs == nil {
				o.Attrs = make(map[string]string)
			}
			o.Attrs[a] = s
		}
	}
	for _, v := range f.Header.Variables() {
		var dd Variable
		if a, ok := f.Header.GetAttribute(v, "description").(string); ok {
			dd.Description = a
		}
		if a, ok := f.Header.GetAttribute(v, "units").(string); ok {
			dd.Units = a
		}
		dims := f.Header.Lengths(v)
		r := f.Reader(v, nil, nil)
		dd.Data = sparse.ZerosDense(dims...)
		tmp := make([]float32, len(dd.Data.Elements))
		if _, err = r.Read(tmp); err != nil {
			return nil, fmt.Errorf("oceantrsp.ReadDataset: reading %s: %v", v, err)
		}
		dd.Dims = f.Header.Dimensions(v)

		// Check that data matches dimensions.
		n := 1
		for _, d := range dims {
			n *= d
		}
		if len(tmp) != n {
			return nil, fmt.Errorf("oceantrsp.ReadDataset: %s: dims are %d but "+
				"array length is %d", v, n, len(tmp))
		}

		for i, val := range tmp {
			dd.Data.Elements[i] = float64(val)
		}
		o.Data[v] = dd
	}
	return o, nil
}

// Write writes d to netcdf file w.
func (d *Dataset) Write(w *os.File) error {
	dimNames, dimLengths, err := collectDims(d.Data)
	if err != nil {
		return fmt.Errorf("oceantrsp: %v", err)
	}
	h := cdf.NewHeader(dimNames, dimLengths)
	for a, v := range d.Attrs {
		h.AddAttribute("", a, v)
	}

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(d.Data))
	for n := range d.Data {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		dd := d.Data[name]
		h.AddVariable(name, dd.Dims, []float32{0})
		h.AddAttribute(name, "description", dd.Description)
		h.AddAttribute(name, "units", dd.Units)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := writeNCF(f, name, d.Data[name].Data); err != nil {
			return fmt.Errorf("oceantrsp: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// collectDims gathers the dimension names and lengths used by a set of
// variables, checking that variables sharing a dimension name agree on
// its length.
func collectDims(vars map[string]Variable) ([]string, []int, error) {
	lengths := make(map[string]int)
	var names []string
	for name, v := range vars {
		if len(v.Dims) != len(v.Data.Shape) {
			return nil, nil, fmt.Errorf("variable %s has %d dims but rank %d",
				name, len(v.Dims), len(v.Data.Shape))
		}
		for i, dim := range v.Dims {
			l := v.Data.Shape[i]
			if prev, ok := lengths[dim]; ok {
				if prev != l {
					return nil, nil, fmt.Errorf("dimension %s has conflicting lengths %d and %d",
						dim, prev, l)
				}
				continue
			}
			lengths[dim] = l
			names = append(names, dim)
		}
	}
	sort.Strings(names)
	out := make([]int, len(names))
	for i, n := range names {
		out[i] = lengths[n]
	}
	return names, out, nil
}

func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	// Check that data matches dimensions.
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}

	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	if _, err := w.Write(data32); err != nil {
		return err
	}
	return nil
}

// coordOptional lists coordinate variables that are carried along when
// present but are not required for any calculation.
var coordOptional = []string{"Z", "k", "time", "maskW", "maskS", "maskC"}

// parseCoords assembles the coordinate bundle for a transport calculation.
// If coords is nil the coordinate variables are taken from ds instead.
// The returned dataset contains the required variables, failing with a
// MissingVariableError if one is absent, plus any of the optional
// coordinate variables (depth, time, wet-point masks) the source carries.
func parseCoords(ds, coords *Dataset, required []string) (*Dataset, error) {
	src := coords
	if src == nil {
		src = ds
	}
	out := new(Dataset)
	out.Data = make(map[string]Variable)
	for _, name := range required {
		v, ok := src.Data[name]
		if !ok {
			return nil, MissingVariableError{Name: name}
		}
		out.Data[name] = v
	}
	for _, name := range coordOptional {
		if v, ok := src.Data[name]; ok {
			out.Data[name] = v
		}
	}
	return out, nil
}
