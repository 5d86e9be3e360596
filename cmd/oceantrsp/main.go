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

// Command oceantrsp computes ocean transport quantities across geographic
// sections from model output in netcdf files.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/spatialmodel/oceantrsp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Config specifies a transport calculation run.
type Config struct {
	// InputFile is the netcdf file holding the model fields (UVELMASS,
	// ADVx_TH, SALT, etc.).
	InputFile string

	// CoordFile optionally holds the coordinate variables (Z, XC, YC,
	// drF, dyG, dxG, wet-point masks) if they are not in InputFile.
	CoordFile string

	// MaskFile holds the precomputed section masks: maskW and maskS,
	// or maskC for along-section mode.
	MaskFile string

	// Quantity is one of volume, heat, salt or freshwater.
	Quantity string

	// SectionName labels the result.
	SectionName string

	// Sign optionally restricts the calculation to "positive" or
	// "negative" crossings.
	Sign string

	// AlongSection retains per-cell structure along the section.
	AlongSection bool

	// Sref is the reference salinity [psu] for freshwater transport;
	// zero means the default of 35.
	Sref float64

	// OutputFile is the netcdf file to write the result to.
	OutputFile string
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var configFile string

var rootCmd = &cobra.Command{
	Use:   "oceantrsp",
	Short: "oceantrsp computes ocean transport across geographic sections",
	Long: `oceantrsp computes volume, heat, salt and freshwater transport of
ocean model output across a geographic section such as a strait or
circumpolar passage.`,
	SilenceUsage: true,
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute section transport from a run configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		return runCalc(cfg)
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the predefined section names",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range oceantrsp.AvailableSections() {
			fmt.Println(name)
		}
	},
}

var plotCmd = &cobra.Command{
	Use:   "plot [result file] [variable] [output image]",
	Short: "Plot a transport depth profile from a result file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlot(args[0], args[1], args[2])
	},
}

func init() {
	calcCmd.Flags().StringVarP(&configFile, "config", "c", "oceantrsp.toml",
		"path to the run configuration file")
	rootCmd.AddCommand(calcCmd, sectionsCmd, plotCmd)
}

func loadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %v", path, err)
	}
	if cfg.InputFile == "" {
		return nil, fmt.Errorf("configuration file %s: InputFile must be set", path)
	}
	if cfg.MaskFile == "" {
		return nil, fmt.Errorf("configuration file %s: MaskFile must be set", path)
	}
	if cfg.OutputFile == "" {
		return nil, fmt.Errorf("configuration file %s: OutputFile must be set", path)
	}
	return cfg, nil
}

func readNCF(path string) (*oceantrsp.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return oceantrsp.ReadDataset(f)
}

func runCalc(cfg *Config) error {
	ds, err := readNCF(cfg.InputFile)
	if err != nil {
		return err
	}
	o := &oceantrsp.SectionOptions{
		SectionName:  cfg.SectionName,
		Sign:         oceantrsp.Sign(cfg.Sign),
		AlongSection: cfg.AlongSection,
		Sref:         cfg.Sref,
		Grid:         oceantrsp.RectGrid{},
	}
	if cfg.CoordFile != "" {
		if o.Coords, err = readNCF(cfg.CoordFile); err != nil {
			return err
		}
	}
	masks, err := readNCF(cfg.MaskFile)
	if err != nil {
		return err
	}
	if m, err := masks.Get("maskW"); err == nil {
		o.MaskW = m
	}
	if m, err := masks.Get("maskS"); err == nil {
		o.MaskS = m
	}
	if m, err := masks.Get("maskC"); err == nil {
		o.MaskC = m
	}

	var tr *oceantrsp.Transport
	var totalVar string
	switch cfg.Quantity {
	case "volume":
		tr, err = oceantrsp.CalcSectionVolTrsp(ds, o)
		totalVar = "vol_trsp"
	case "heat":
		tr, err = oceantrsp.CalcSectionHeatTrsp(ds, o)
		totalVar = "heat_trsp"
	case "salt":
		tr, err = oceantrsp.CalcSectionSaltTrsp(ds, o)
		totalVar = "salt_trsp"
	case "freshwater":
		tr, err = oceantrsp.CalcSectionFWTrsp(ds, o)
		totalVar = "fw_trsp_adv"
	default:
		return fmt.Errorf("unknown quantity %q; must be volume, heat, salt or freshwater", cfg.Quantity)
	}
	if err != nil {
		return err
	}

	logTotal(tr, totalVar, cfg.Quantity)

	w, err := os.Create(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := tr.Write(w); err != nil {
		return err
	}
	log.Printf("wrote %s", cfg.OutputFile)
	return nil
}

// logTotal reports the depth-integrated transport, averaged over time
// steps if present, with its SI equivalent.
func logTotal(tr *oceantrsp.Transport, name, quantity string) {
	v, ok := tr.Data[name]
	if !ok {
		return
	}
	mean := 0.
	for _, e := range v.Data.Elements {
		mean += e
	}
	if len(v.Data.Elements) > 0 {
		mean /= float64(len(v.Data.Elements))
	}
	switch v.Units {
	case "PW":
		log.Printf("%s transport: %g PW (%v)", quantity, mean, oceantrsp.PetawattsToSI(mean))
	case "Sv":
		log.Printf("%s transport: %g Sv (%v)", quantity, mean, oceantrsp.SverdrupsToSI(mean))
	default:
		log.Printf("%s transport: %g %s", quantity, mean, v.Units)
	}
}

func runPlot(resultFile, varName, outFile string) error {
	ds, err := readNCF(resultFile)
	if err != nil {
		return err
	}
	v, ok := ds.Data[varName]
	if !ok {
		return fmt.Errorf("%s has no variable %s", resultFile, varName)
	}
	profile, err := depthProfile(v)
	if err != nil {
		return err
	}
	z, err := ds.Get("Z")
	if err != nil {
		return fmt.Errorf("%s: %v", resultFile, err)
	}
	if len(z.Elements) != len(profile) {
		return fmt.Errorf("variable %s has %d depth levels but Z has %d",
			varName, len(profile), len(z.Elements))
	}

	pts := make(plotter.XYs, len(profile))
	for k := range profile {
		pts[k].X = profile[k]
		pts[k].Y = z.Elements[k]
	}
	p := plot.New()
	p.Title.Text = varName
	p.X.Label.Text = v.Units
	p.Y.Label.Text = "depth [m]"
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line, plotter.NewGrid())
	if err := p.Save(4*vg.Inch, 6*vg.Inch, outFile); err != nil {
		return err
	}
	log.Printf("wrote %s", outFile)
	return nil
}

// depthProfile extracts a per-depth-level profile from a result variable,
// averaging over the time axis if one is present.
func depthProfile(v oceantrsp.Variable) ([]float64, error) {
	switch len(v.Data.Shape) {
	case 1:
		return v.Data.Elements, nil
	case 2:
		nt, nk := v.Data.Shape[0], v.Data.Shape[1]
		out := make([]float64, nk)
		for t := 0; t < nt; t++ {
			for k := 0; k < nk; k++ {
				out[k] += v.Data.Elements[t*nk+k] / float64(nt)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("variable must have dimensions [k] or [time k] but has shape %v",
		v.Data.Shape)
}
