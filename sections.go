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
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// Errors returned when the section specification in a SectionOptions is
// invalid. A section must be specified in exactly one of three ways: a
// predefined section name, a pair of endpoints, or a precomputed mask
// triple.
var (
	ErrSectionUnderspecified = errors.New("oceantrsp: must provide one method for defining section")
	ErrSectionAmbiguous      = errors.New("oceantrsp: cannot provide more than one method for defining section")
)

// SectionMasker computes the boundary masks for the section line running
// from pt1 to pt2 (longitude as X, latitude as Y): a signed mask at the
// cell centers the line crosses and signed masks at the west and south
// cell edges it crosses, with the sign of each crossing chosen so that
// summing signed fluxes measures net transport in one consistent direction
// along the whole section. Implementations encode the line-to-grid
// crossing algorithm for a particular grid topology.
type SectionMasker interface {
	LineToMasks(pt1, pt2 geom.Point, coords *Dataset, grid GridOperator) (maskC, maskW, maskS *sparse.DenseArray, err error)
}

// predefinedSections maps normalized section names to endpoint pairs
// [2]{lon, lat}. The endpoints approximate commonly analyzed straits and
// passages of the global ocean.
var predefinedSections = map[string]struct {
	name     string
	pt1, pt2 geom.Point
}{}

func addSection(name string, lon1, lat1, lon2, lat2 float64) {
	predefinedSections[normalizeSectionName(name)] = struct {
		name     string
		pt1, pt2 geom.Point
	}{name, geom.Point{X: lon1, Y: lat1}, geom.Point{X: lon2, Y: lat2}}
}

func init() {
	addSection("Bering Strait", -171, 66.2, -166, 65.5)
	addSection("Gibraltar", -5.5, 36.2, -5.5, 35.8)
	addSection("Florida Strait", -81.2, 28.7, -77.6, 26.7)
	addSection("Davis Strait", -65.1, 66.1, -50.4, 66.1)
	addSection("Denmark Strait", -35, 67, -20, 65)
	addSection("Iceland Faroe", -16, 65, -7, 62.5)
	addSection("Faroe Scotland", -6.7, 62.3, -4.2, 58.4)
	addSection("Scotland Norway", -4.2, 58.4, 8, 62)
	addSection("Fram Strait", -20, 79, 10, 79)
	addSection("Barents Sea", 16.5, 76.5, 19.5, 70)
	addSection("Mozambique Channel", 38, -14, 46, -22)
	addSection("Indonesia W1", 103, 4, 103, -1)
	addSection("Indonesia W2", 104, -3, 109, -8)
	addSection("Indonesia W3", 113, -8.5, 118, -8.5)
	addSection("Indonesia W4", 118, -8.5, 127, -15)
	addSection("Australia Antarctica", 127, -25, 127, -68)
	addSection("Drake Passage", -68, -54, -63, -66)
	addSection("South Africa", 20, -30, 20, -57)
}

func normalizeSectionName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// SectionEndpoints looks up the endpoints for a predefined section name.
// Lookup ignores case and white space. ok is false if the name is not a
// predefined section.
func SectionEndpoints(name string) (pt1, pt2 geom.Point, ok bool) {
	s, ok := predefinedSections[normalizeSectionName(name)]
	return s.pt1, s.pt2, ok
}

// AvailableSections returns the names of all predefined sections in
// alphabetical order.
func AvailableSections() []string {
	names := make([]string, 0, len(predefinedSections))
	for _, s := range predefinedSections {
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}

// resolveSectionMasks reconciles the three mutually exclusive ways of
// specifying a section in o (a predefined name, an endpoint pair, or
// precomputed masks) into one mask triple. A recognized predefined name
// wins, then endpoints, then masks; specifying more than one is an error,
// as is specifying none.
func resolveSectionMasks(coords *Dataset, o *SectionOptions) (maskC, maskW, maskS *sparse.DenseArray, err error) {
	var pt1, pt2 geom.Point

	usePredefined := false
	if o.SectionName != "" {
		pt1, pt2, usePredefined = SectionEndpoints(o.SectionName)
	}
	useEndpoints := o.Pt1 != nil && o.Pt2 != nil
	useMasks := (o.MaskW != nil && o.MaskS != nil) || o.MaskC != nil

	if !usePredefined && !useEndpoints && !useMasks {
		return nil, nil, nil, ErrSectionUnderspecified
	}
	if usePredefined {
		if useEndpoints || useMasks {
			return nil, nil, nil, ErrSectionAmbiguous
		}
	} else if useEndpoints {
		if useMasks {
			return nil, nil, nil, ErrSectionAmbiguous
		}
		pt1, pt2 = *o.Pt1, *o.Pt2
	}

	if useMasks {
		return o.MaskC, o.MaskW, o.MaskS, nil
	}
	if o.Masker == nil {
		return nil, nil, nil, fmt.Errorf("oceantrsp: a SectionMasker is required to compute masks from section endpoints")
	}
	maskC, maskW, maskS, err = o.Masker.LineToMasks(pt1, pt2, coords, o.Grid)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("oceantrsp: computing section masks: %v", err)
	}
	return maskC, maskW, maskS, nil
}
