/*
 * plot.go, part of godens.
 *
 * Copyright 2024 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package densplot renders Fourier shell correlation curves. It is the
//plotting collaborator of the fsc package: fsc produces curves, this package
//draws them.
package densplot

import (
	"fmt"
	"image/color"

	"github.com/rmera/godens/fsc"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//FSCPlot draws the given curve, with guide lines at the 0.5 and 0.143
//thresholds, and saves it as a PNG file with the given name.
func FSCPlot(c *fsc.Curve, title, filename string) error {
	if c == nil || len(c.Freq) == 0 {
		return fmt.Errorf("Given nil or empty curve")
	}
	pts := make(plotter.XYs, len(c.Freq))
	for i := range c.Freq {
		pts[i].X = c.Freq[i]
		pts[i].Y = c.Val[i]
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Spatial frequency (1/A)"
	p.Y.Label.Text = "FSC"
	p.Y.Min = -0.1
	p.Y.Max = 1.05
	p.Add(plotter.NewGrid())
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Color = color.RGBA{B: 255, A: 255}
	p.Add(l)
	for _, thr := range []float64{fsc.Half, fsc.Gold} {
		g, err := plotter.NewLine(plotter.XYs{{X: c.Freq[0], Y: thr}, {X: c.Freq[len(c.Freq)-1], Y: thr}})
		if err != nil {
			return err
		}
		g.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		g.LineStyle.Color = color.RGBA{R: 255, A: 255}
		p.Add(g)
	}
	if err := p.Save(14*vg.Centimeter, 10*vg.Centimeter, filename); err != nil {
		return err
	}
	return nil
}
