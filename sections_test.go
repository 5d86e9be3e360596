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
	"sort"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

func TestSectionEndpoints(t *testing.T) {
	pt1, pt2, ok := SectionEndpoints("Drake Passage")
	if !ok {
		t.Fatal("Drake Passage should be a predefined section")
	}
	if pt1.Y >= 0 || pt2.Y >= 0 {
		t.Errorf("Drake Passage endpoints should be in the southern hemisphere: %v %v", pt1, pt2)
	}

	// Lookup ignores case and white space.
	alt1, alt2, ok := SectionEndpoints("  drake  PASSAGE ")
	if !ok {
		t.Fatal("normalized lookup failed")
	}
	if alt1 != pt1 || alt2 != pt2 {
		t.Errorf("normalized lookup returned different endpoints: %v %v", alt1, alt2)
	}

	if _, _, ok := SectionEndpoints("Strait of Nowhere"); ok {
		t.Error("unknown section name should not resolve")
	}
}

func TestAvailableSections(t *testing.T) {
	names := AvailableSections()
	if len(names) == 0 {
		t.Fatal("no predefined sections")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("section names are not sorted: %v", names)
	}
	found := false
	for _, n := range names {
		if n == "Bering Strait" {
			found = true
		}
	}
	if !found {
		t.Errorf("Bering Strait missing from %v", names)
	}
}

// recordingMasker is a SectionMasker that records the endpoints it was
// called with and returns fixed masks.
type recordingMasker struct {
	pt1, pt2 geom.Point
	calls    int
	maskC    *sparse.DenseArray
	maskW    *sparse.DenseArray
	maskS    *sparse.DenseArray
}

func (m *recordingMasker) LineToMasks(pt1, pt2 geom.Point, coords *Dataset, grid GridOperator) (*sparse.DenseArray, *sparse.DenseArray, *sparse.DenseArray, error) {
	m.pt1, m.pt2 = pt1, pt2
	m.calls++
	return m.maskC, m.maskW, m.maskS, nil
}

func newRecordingMasker(ntile, nj, ni int) *recordingMasker {
	return &recordingMasker{
		maskC: sparse.ZerosDense(ntile, nj, ni),
		maskW: sparse.ZerosDense(ntile, nj, ni),
		maskS: sparse.ZerosDense(ntile, nj, ni),
	}
}

func TestResolveSectionMasks(t *testing.T) {
	pt1 := geom.Point{X: -68, Y: -54}
	pt2 := geom.Point{X: -63, Y: -66}
	mask := sparse.ZerosDense(1, 3, 3)

	tests := []struct {
		name    string
		opts    SectionOptions
		wantErr error
	}{
		{
			name:    "none",
			opts:    SectionOptions{},
			wantErr: ErrSectionUnderspecified,
		},
		{
			name:    "predefined and endpoints",
			opts:    SectionOptions{SectionName: "Drake Passage", Pt1: &pt1, Pt2: &pt2},
			wantErr: ErrSectionAmbiguous,
		},
		{
			name:    "predefined and masks",
			opts:    SectionOptions{SectionName: "Drake Passage", MaskW: mask, MaskS: mask},
			wantErr: ErrSectionAmbiguous,
		},
		{
			name:    "endpoints and masks",
			opts:    SectionOptions{Pt1: &pt1, Pt2: &pt2, MaskC: mask},
			wantErr: ErrSectionAmbiguous,
		},
		{
			name: "west mask alone is underspecified",
			opts: SectionOptions{MaskW: mask},
			// A west-edge mask without a south-edge mask does not
			// define a section.
			wantErr: ErrSectionUnderspecified,
		},
	}
	for _, test := range tests {
		_, _, _, err := resolveSectionMasks(nil, &test.opts)
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.wantErr)
		}
	}
}

func TestResolveSectionMasksPassThrough(t *testing.T) {
	maskW := sparse.ZerosDense(1, 3, 3)
	maskS := sparse.ZerosDense(1, 3, 3)
	maskC, gotW, gotS, err := resolveSectionMasks(nil, &SectionOptions{MaskW: maskW, MaskS: maskS})
	if err != nil {
		t.Fatal(err)
	}
	if gotW != maskW || gotS != maskS {
		t.Error("edge masks were not passed through unchanged")
	}
	if maskC != nil {
		t.Error("no center mask was supplied, but one was returned")
	}

	// A center mask may be supplied alone.
	onlyC := sparse.ZerosDense(1, 3, 3)
	gotC, _, _, err := resolveSectionMasks(nil, &SectionOptions{MaskC: onlyC})
	if err != nil {
		t.Fatal(err)
	}
	if gotC != onlyC {
		t.Error("center mask was not passed through unchanged")
	}

	// A non-predefined section name together with masks is a label,
	// not a second specification method.
	_, _, _, err = resolveSectionMasks(nil, &SectionOptions{
		SectionName: "my moorings", MaskW: maskW, MaskS: maskS,
	})
	if err != nil {
		t.Errorf("labeled mask specification: %v", err)
	}
}

func TestResolveSectionMasksEndpoints(t *testing.T) {
	m := newRecordingMasker(1, 3, 3)
	pt1 := geom.Point{X: 1, Y: 2}
	pt2 := geom.Point{X: 3, Y: 4}
	_, _, _, err := resolveSectionMasks(nil, &SectionOptions{Pt1: &pt1, Pt2: &pt2, Masker: m})
	if err != nil {
		t.Fatal(err)
	}
	if m.calls != 1 {
		t.Fatalf("masker called %d times, want 1", m.calls)
	}
	if m.pt1 != pt1 || m.pt2 != pt2 {
		t.Errorf("masker called with %v %v, want %v %v", m.pt1, m.pt2, pt1, pt2)
	}

	// A predefined name resolves to its catalog endpoints.
	want1, want2, _ := SectionEndpoints("Bering Strait")
	_, _, _, err = resolveSectionMasks(nil, &SectionOptions{SectionName: "Bering Strait", Masker: m})
	if err != nil {
		t.Fatal(err)
	}
	if m.pt1 != want1 || m.pt2 != want2 {
		t.Errorf("masker called with %v %v, want %v %v", m.pt1, m.pt2, want1, want2)
	}

	// Endpoints without a masker cannot be resolved.
	_, _, _, err = resolveSectionMasks(nil, &SectionOptions{Pt1: &pt1, Pt2: &pt2})
	if err == nil {
		t.Error("expected an error resolving endpoints without a masker")
	}
}
