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

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// SectionOptions configures a section transport calculation. The section
// itself must be specified in exactly one of three ways:
//
//  1. SectionName naming a predefined section (see AvailableSections);
//  2. Pt1 and Pt2 giving the section endpoints as lon/lat points; or
//  3. precomputed section masks: MaskW and MaskS together, or MaskC alone
//     (MaskC is only used in along-section mode).
//
// Modes 1 and 2 require a Masker to turn the endpoints into masks.
type SectionOptions struct {
	// Pt1 and Pt2 are the section endpoints (longitude as X, latitude
	// as Y).
	Pt1, Pt2 *geom.Point

	// SectionName is either the name of a predefined section, or a
	// label to attach to the result of a section specified another way.
	SectionName string

	// MaskW, MaskS and MaskC are precomputed signed section masks at
	// the west-edge, south-edge and center grid positions.
	MaskW, MaskS, MaskC *sparse.DenseArray

	// Coords optionally supplies the coordinate variables (Z, XC, YC,
	// drF, dyG, dxG, and optionally wet-point masks) separately from
	// the field dataset.
	Coords *Dataset

	// Grid supplies the grid differential operators. It is required in
	// along-section mode and for freshwater transport.
	Grid GridOperator

	// Masker computes section masks from endpoints.
	Masker SectionMasker

	// Sign optionally restricts a depth-level calculation to inflow
	// (SignPositive) or outflow (SignNegative).
	Sign Sign

	// AlongSection selects the along-section reduction, which retains
	// per-cell structure along the section instead of summing it away.
	AlongSection bool

	// Sref is the reference salinity [psu] for freshwater transport;
	// zero means DefaultSref.
	Sref float64
}

// reduceSection dispatches to the along-section or depth-level reduction.
func reduceSection(xfld, yfld, maskC, maskW, maskS *sparse.DenseArray, coords *Dataset, o *SectionOptions) (*Transport, error) {
	if o.AlongSection {
		if maskC == nil {
			return nil, fmt.Errorf("oceantrsp: along-section transport requires a center mask")
		}
		return SectionTrspAcross(xfld, yfld, maskC, o.Grid, coords)
	}
	if maskW == nil || maskS == nil {
		return nil, fmt.Errorf("oceantrsp: depth-level transport requires west- and south-edge masks")
	}
	return SectionTrspAtDepth(xfld, yfld, maskW, maskS, coords, o.Sign)
}

// finishQuantity renames the generic profile variable to its
// quantity-specific name, applies the unit conversion, and adds the
// depth-integrated total.
func finishQuantity(tr *Transport, name, description, units string, scale float64) error {
	err := tr.rename(trspZName, name+"_z", description+" at each depth level", units, scale)
	if err != nil {
		return err
	}
	total, err := sumOverDim(tr.Data[name+"_z"], "k")
	if err != nil {
		return err
	}
	total.Description = description
	tr.Data[name] = total
	return nil
}

// attachResult adds the resolved section masks (depth-level mode only;
// the along-section result already encodes the section through its cell
// index) and the section name label.
func attachResult(tr *Transport, maskW, maskS *sparse.DenseArray, o *SectionOptions) {
	if !o.AlongSection {
		tr.AddVariable("maskW", []string{"tile", "j", "i_g"},
			"signed west-edge mask defining the section", "", maskW.Copy())
		tr.AddVariable("maskS", []string{"tile", "j_g", "i"},
			"signed south-edge mask defining the section", "", maskS.Copy())
	}
	if o.SectionName != "" {
		tr.Name = o.SectionName
	}
}

// CalcSectionVolTrsp computes volumetric transport across a section in
// Sverdrups. ds must contain UVELMASS and VVELMASS; the coordinates must
// contain Z, YC, XC, drF, dyG and dxG. The result holds vol_trsp_z (per
// depth level) and vol_trsp (depth integrated).
func CalcSectionVolTrsp(ds *Dataset, o *SectionOptions) (*Transport, error) {
	if o == nil {
		o = new(SectionOptions)
	}
	coords, err := parseCoords(ds, o.Coords, []string{"Z", "YC", "XC", "drF", "dyG", "dxG"})
	if err != nil {
		return nil, err
	}
	maskC, maskW, maskS, err := resolveSectionMasks(coords, o)
	if err != nil {
		return nil, err
	}

	u, err := ds.Get("UVELMASS")
	if err != nil {
		return nil, err
	}
	v, err := ds.Get("VVELMASS")
	if err != nil {
		return nil, err
	}
	drF, _ := coords.Get("drF")
	dyG, _ := coords.Get("dyG")
	dxG, _ := coords.Get("dxG")

	xvol, err := scaleEdgeFlux(u, drF, dyG)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionVolTrsp: UVELMASS: %v", err)
	}
	yvol, err := scaleEdgeFlux(v, drF, dxG)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionVolTrsp: VVELMASS: %v", err)
	}

	tr, err := reduceSection(xvol, yvol, maskC, maskW, maskS, coords, o)
	if err != nil {
		return nil, err
	}
	if err := finishQuantity(tr, "vol_trsp",
		"volumetric transport across section", "Sv", MetersCubedToSverdrups); err != nil {
		return nil, err
	}
	attachResult(tr, maskW, maskS, o)
	return tr, nil
}

// CalcSectionHeatTrsp computes heat transport across a section in
// petawatts. ds must contain ADVx_TH, ADVy_TH, DFxE_TH and DFyE_TH; the
// coordinates must contain Z, YC and XC. The result holds heat_trsp_z
// and heat_trsp.
func CalcSectionHeatTrsp(ds *Dataset, o *SectionOptions) (*Transport, error) {
	if o == nil {
		o = new(SectionOptions)
	}
	coords, err := parseCoords(ds, o.Coords, []string{"Z", "YC", "XC"})
	if err != nil {
		return nil, err
	}
	maskC, maskW, maskS, err := resolveSectionMasks(coords, o)
	if err != nil {
		return nil, err
	}

	xheat, err := sumFluxVars(ds, "ADVx_TH", "DFxE_TH")
	if err != nil {
		return nil, err
	}
	yheat, err := sumFluxVars(ds, "ADVy_TH", "DFyE_TH")
	if err != nil {
		return nil, err
	}

	tr, err := reduceSection(xheat, yheat, maskC, maskW, maskS, coords, o)
	if err != nil {
		return nil, err
	}
	if err := finishQuantity(tr, "heat_trsp",
		"heat transport across section", "PW",
		WattsToPetawatts*RhoConst*HeatCapacity); err != nil {
		return nil, err
	}
	attachResult(tr, maskW, maskS, o)
	return tr, nil
}

// CalcSectionSaltTrsp computes salt transport across a section in psu·Sv.
// ds must contain ADVx_SLT, ADVy_SLT, DFxE_SLT and DFyE_SLT; the
// coordinates must contain Z, YC and XC. The result holds salt_trsp_z
// and salt_trsp.
func CalcSectionSaltTrsp(ds *Dataset, o *SectionOptions) (*Transport, error) {
	if o == nil {
		o = new(SectionOptions)
	}
	coords, err := parseCoords(ds, o.Coords, []string{"Z", "YC", "XC"})
	if err != nil {
		return nil, err
	}
	maskC, maskW, maskS, err := resolveSectionMasks(coords, o)
	if err != nil {
		return nil, err
	}

	xsalt, err := sumFluxVars(ds, "ADVx_SLT", "DFxE_SLT")
	if err != nil {
		return nil, err
	}
	ysalt, err := sumFluxVars(ds, "ADVy_SLT", "DFyE_SLT")
	if err != nil {
		return nil, err
	}

	tr, err := reduceSection(xsalt, ysalt, maskC, maskW, maskS, coords, o)
	if err != nil {
		return nil, err
	}
	if err := finishQuantity(tr, "salt_trsp",
		"salt transport across section", "psu.Sv", MetersCubedToSverdrups); err != nil {
		return nil, err
	}
	attachResult(tr, maskW, maskS, o)
	return tr, nil
}

// CalcSectionFWTrsp computes freshwater transport across a section in
// Sverdrups, relative to the reference salinity o.Sref. ds must contain
// SALT, GM_PsiX, GM_PsiY, UVELMASS, VVELMASS, DFxE_SLT and DFyE_SLT; the
// coordinates must contain Z, YC, XC, dyG, dxG and drF. o.Grid is
// required to interpolate salinity to the cell edges and to difference
// the eddy transport stream function.
//
// The advective and diffusive contributions are computed as two
// independent reductions; the result holds fw_trsp_adv_z, fw_trsp_adv,
// fw_trsp_dif_z and fw_trsp_dif.
func CalcSectionFWTrsp(ds *Dataset, o *SectionOptions) (*Transport, error) {
	if o == nil {
		o = new(SectionOptions)
	}
	sref := o.Sref
	if sref == 0 {
		sref = DefaultSref
	}
	coords, err := parseCoords(ds, o.Coords, []string{"Z", "YC", "XC", "dyG", "dxG", "drF"})
	if err != nil {
		return nil, err
	}
	maskC, maskW, maskS, err := resolveSectionMasks(coords, o)
	if err != nil {
		return nil, err
	}
	if o.Grid == nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: a GridOperator is required")
	}

	var flds [7]*sparse.DenseArray
	for i, name := range []string{"SALT", "GM_PsiX", "GM_PsiY", "UVELMASS", "VVELMASS", "DFxE_SLT", "DFyE_SLT"} {
		if flds[i], err = ds.Get(name); err != nil {
			return nil, err
		}
	}
	salt, gmPsiX, gmPsiY, u, v, dfxSlt, dfySlt := flds[0], flds[1], flds[2], flds[3], flds[4], flds[5], flds[6]
	drF, _ := coords.Get("drF")
	dyG, _ := coords.Get("dyG")
	dxG, _ := coords.Get("dxG")

	saltU, err := o.Grid.Interp(salt, AxisX, BoundaryExtend)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: interpolating SALT: %v", err)
	}
	saltV, err := o.Grid.Interp(salt, AxisY, BoundaryExtend)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: interpolating SALT: %v", err)
	}

	// Eddy-induced velocity from the vertical derivative of the
	// transport stream function; the fill boundary makes the boundary
	// interfaces contribute zero.
	uStar, err := eddyVelocity(o.Grid, gmPsiX, drF)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: GM_PsiX: %v", err)
	}
	vStar, err := eddyVelocity(o.Grid, gmPsiY, drF)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: GM_PsiY: %v", err)
	}

	advX, err := fwAdvFlux(u, uStar, dyG, drF, saltU, sref)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: UVELMASS: %v", err)
	}
	advY, err := fwAdvFlux(v, vStar, dxG, drF, saltV, sref)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp.CalcSectionFWTrsp: VVELMASS: %v", err)
	}

	// Assuming diffusive transports are functions of grad(quantity),
	// using grad(fw) = -grad(SALT)/Sref.
	difX := dfxSlt.ScaleCopy(-1 / sref)
	difY := dfySlt.ScaleCopy(-1 / sref)

	trAdv, err := reduceSection(advX, advY, maskC, maskW, maskS, coords, o)
	if err != nil {
		return nil, err
	}
	if err := finishQuantity(trAdv, "fw_trsp_adv",
		"advective freshwater transport across section", "Sv", MetersCubedToSverdrups); err != nil {
		return nil, err
	}
	trDif, err := reduceSection(difX, difY, maskC, maskW, maskS, coords, o)
	if err != nil {
		return nil, err
	}
	if err := finishQuantity(trDif, "fw_trsp_dif",
		"diffusive freshwater transport across section", "Sv", MetersCubedToSverdrups); err != nil {
		return nil, err
	}

	// Merge the two contributions into one result.
	tr := trAdv
	for _, name := range []string{"fw_trsp_dif_z", "fw_trsp_dif"} {
		tr.Data[name] = trDif.Data[name]
	}
	attachResult(tr, maskW, maskS, o)
	return tr, nil
}

// eddyVelocity computes the eddy-induced (bolus) velocity from a
// transport stream function by vertical differencing and division by the
// depth-level thickness.
func eddyVelocity(grid GridOperator, psi, drF *sparse.DenseArray) (*sparse.DenseArray, error) {
	dPsi, err := grid.Diff(psi, AxisZ, BoundaryFill)
	if err != nil {
		return nil, err
	}
	return divideByThickness(dPsi, drF)
}

// sumFluxVars returns the element-wise sum of two named flux variables,
// typically an advective and a diffusive component.
func sumFluxVars(ds *Dataset, a, b string) (*sparse.DenseArray, error) {
	fa, err := ds.Get(a)
	if err != nil {
		return nil, err
	}
	fb, err := ds.Get(b)
	if err != nil {
		return nil, err
	}
	out, err := addFields(fa, fb)
	if err != nil {
		return nil, fmt.Errorf("oceantrsp: adding %s and %s: %v", a, b, err)
	}
	return out, nil
}
