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
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

func TestDatasetWriteRead(t *testing.T) {
	ds := new(Dataset)
	drF := sparse.ZerosDense(3)
	copy(drF.Elements, []float64{10, 20, 30})
	trsp := sparse.ZerosDense(3)
	copy(trsp.Elements, []float64{0.5, -1.25, 2})
	ds.AddVariable("drF", []string{"k"}, "depth-level thickness", "m", drF)
	ds.AddVariable("vol_trsp_z", []string{"k"}, "volumetric transport at each depth level", "Sv", trsp)
	ds.Attrs = map[string]string{"name": "Drake Passage"}

	path := filepath.Join(t.TempDir(), "trsp.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.Write(w); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := ReadDataset(r)
	if err != nil {
		t.Fatal(err)
	}
	if got.Attrs["name"] != "Drake Passage" {
		t.Errorf("name attribute is %q, want %q", got.Attrs["name"], "Drake Passage")
	}
	for name, want := range ds.Data {
		v, ok := got.Data[name]
		if !ok {
			t.Fatalf("read-back dataset lacks %s", name)
		}
		if !reflect.DeepEqual(v.Dims, want.Dims) {
			t.Errorf("%s: dims are %v, want %v", name, v.Dims, want.Dims)
		}
		if v.Units != want.Units {
			t.Errorf("%s: units are %q, want %q", name, v.Units, want.Units)
		}
		if v.Description != want.Description {
			t.Errorf("%s: description is %q, want %q", name, v.Description, want.Description)
		}
		// All test values are exactly representable in float32.
		if !reflect.DeepEqual(v.Data.Elements, want.Data.Elements) {
			t.Errorf("%s: data is %v, want %v", name, v.Data.Elements, want.Data.Elements)
		}
	}
}

func TestCollectDims(t *testing.T) {
	vars := map[string]Variable{
		"a": {Dims: []string{"k", "tile"}, Data: sparse.ZerosDense(3, 2)},
		"b": {Dims: []string{"tile"}, Data: sparse.ZerosDense(2)},
	}
	names, lengths, err := collectDims(vars)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"k", "tile"}) {
		t.Errorf("dimension names are %v, want [k tile]", names)
	}
	if !reflect.DeepEqual(lengths, []int{3, 2}) {
		t.Errorf("dimension lengths are %v, want [3 2]", lengths)
	}

	vars["b"] = Variable{Dims: []string{"tile"}, Data: sparse.ZerosDense(4)}
	if _, _, err := collectDims(vars); err == nil {
		t.Error("conflicting dimension lengths should be an error")
	}
}

func TestParseCoords(t *testing.T) {
	coords := new(Dataset)
	coords.AddVariable("drF", []string{"k"}, "", "m", sparse.ZerosDense(3))
	coords.AddVariable("maskW", []string{"tile", "j", "i_g"}, "", "", sparse.ZerosDense(1, 3, 3))

	out, err := parseCoords(nil, coords, []string{"drF"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Has("drF") {
		t.Error("required variable drF was not carried")
	}
	if !out.Has("maskW") {
		t.Error("optional variable maskW was not carried")
	}
	if out.Has("maskS") {
		t.Error("absent optional variable maskS should not appear")
	}

	_, err = parseCoords(nil, coords, []string{"drF", "dyG"})
	var missing MissingVariableError
	if !errors.As(err, &missing) || missing.Name != "dyG" {
		t.Errorf("got %v, want a MissingVariableError for dyG", err)
	}

	// With no separate coordinate dataset the variables come from the
	// data itself.
	out, err = parseCoords(coords, nil, []string{"drF"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Has("drF") {
		t.Error("coordinates were not taken from the data")
	}
}

func TestTransportDataset(t *testing.T) {
	tr := &Transport{Name: "Fram Strait"}
	tr.Cells = []CellIndex{{Tile: 0, J: 1, I: 2}, {Tile: 1, J: 0, I: 0}}
	tr.AddVariable("vol_trsp_z", []string{"k", "sec"}, "", "Sv", sparse.ZerosDense(3, 2))

	ds := tr.Dataset()
	if ds.Attrs["name"] != "Fram Strait" {
		t.Errorf("name attribute is %q, want %q", ds.Attrs["name"], "Fram Strait")
	}
	for _, name := range []string{"sec_tile", "sec_j", "sec_i"} {
		v, ok := ds.Data[name]
		if !ok {
			t.Fatalf("dataset lacks %s", name)
		}
		if v.Data.Shape[0] != 2 {
			t.Errorf("%s has length %d, want 2", name, v.Data.Shape[0])
		}
	}
	if got := ds.Data["sec_i"].Data.Get(0); got != 2 {
		t.Errorf("sec_i[0] is %g, want 2", got)
	}
}
