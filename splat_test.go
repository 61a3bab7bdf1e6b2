/*
 * splat_test.go, part of godens.
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

package dens

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

//an 11x11x11 grid of unit voxels centered at the coordinate origin
func unitGrid(Te *testing.T) *Axes {
	ax, err := ExplicitAxes([3]float64{-5, -5, -5}, [3]float64{1, 1, 1}, [3]int{11, 11, 11})
	if err != nil {
		Te.Fatal(err)
	}
	return ax
}

func TestSplatSingleAtom(Te *testing.T) {
	ax := unitGrid(Te)
	coord := mat.NewDense(1, 3, []float64{0, 0, 0})
	m, eff, err := SplatFrame(coord, nil, ax, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if eff != 1 {
		Te.Errorf("Got %d contributing atoms, want 1", eff)
	}
	//the map integrates to the number of contributing atoms
	integral := m.Sum() * m.VoxelVolume()
	if math.Abs(integral-1) > 1e-10 {
		Te.Errorf("The map integrates to %v, want 1", integral)
	}
	//the density peaks at the central voxel and is symmetric around it
	center := m.At(5, 5, 5)
	for _, v := range m.Data {
		if v > center {
			Te.Error("The density doesn't peak at the atom position")
			break
		}
	}
	if m.At(5, 5, 4) != m.At(5, 5, 6) || m.At(4, 5, 5) != m.At(6, 5, 5) {
		Te.Error("The density isn't symmetric around the atom")
	}
	fmt.Println("central voxel:", center)
}

func TestSplatBoundary(Te *testing.T) {
	ax := unitGrid(Te)
	//one atom on the grid edge, one far outside: both are counted as
	//contributors, but the outside one adds nothing.
	coord := mat.NewDense(1, 3, []float64{1000, 1000, 1000})
	m, eff, err := SplatFrame(coord, nil, ax, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if eff != 1 {
		Te.Errorf("Got %d contributing atoms, want 1", eff)
	}
	if m.Sum() != 0 {
		Te.Error("An atom beyond the cutoff from the whole grid should add nothing")
	}
	coord = mat.NewDense(1, 3, []float64{-5, -5, -5})
	m, _, err = SplatFrame(coord, nil, ax, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if m.Sum() <= 0 {
		Te.Error("An atom on the grid corner should still contribute")
	}
}

func TestSplatWaterFilter(Te *testing.T) {
	ax := unitGrid(Te)
	coord := mat.NewDense(3, 3, []float64{0, 0, 0, 1, 0, 0, 0, 1, 0})
	names := []string{"ALA", "SOL", "HOH"}
	o := DefaultOptions()
	o.NoWater(true)
	m, eff, err := SplatFrame(coord, names, ax, o)
	if err != nil {
		Te.Fatal(err)
	}
	if eff != 1 {
		Te.Errorf("Got %d contributing atoms with the water filter on, want 1", eff)
	}
	integral := m.Sum() * m.VoxelVolume()
	if math.Abs(integral-1) > 1e-10 {
		Te.Errorf("The filtered map integrates to %v, want 1", integral)
	}
	//labels not matching the atom count are rejected
	if _, _, err := SplatFrame(coord, []string{"ALA"}, ax, o); err == nil {
		Te.Error("Mismatched residue labels should be an error")
	}
}

func TestSplatDeterministic(Te *testing.T) {
	//the merge of the per-worker grids is ordered, so for a fixed worker
	//count repeated runs are bit-identical; across worker counts the
	//summation order changes and only a rounding-level difference is allowed
	ax := unitGrid(Te)
	nat := 40
	data := make([]float64, nat*3)
	for i := range data {
		data[i] = 7*math.Sin(float64(i)) - 2*math.Cos(float64(3*i))
	}
	coord := mat.NewDense(nat, 3, data)
	o4 := DefaultOptions()
	o4.Cpus(4)
	m4, _, err := SplatFrame(coord, nil, ax, o4)
	if err != nil {
		Te.Fatal(err)
	}
	m4b, _, err := SplatFrame(coord, nil, ax, o4)
	if err != nil {
		Te.Fatal(err)
	}
	for i := range m4.Data {
		if m4.Data[i] != m4b.Data[i] {
			Te.Fatal("Repeated runs with the same worker count differ")
		}
	}
	o1 := DefaultOptions()
	o1.Cpus(1)
	m1, _, err := SplatFrame(coord, nil, ax, o1)
	if err != nil {
		Te.Fatal(err)
	}
	const tol = 1e-12
	for i := range m1.Data {
		d := math.Abs(m1.Data[i] - m4.Data[i])
		if d > tol*math.Abs(m1.Data[i])+tol {
			Te.Fatalf("Voxel %d differs by %v between worker counts", i, d)
		}
	}
}

func TestSplatTrajectory(Te *testing.T) {
	ax := unitGrid(Te)
	f1 := mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1})
	f2 := mat.NewDense(2, 3, []float64{0.5, 0, 0, 1, 1, 0})
	seq, err := NewFrameSeq([]*mat.Dense{f1, f2}, nil)
	if err != nil {
		Te.Fatal(err)
	}
	seen := 0
	o := DefaultOptions()
	o.Frames(seq.Frames())
	o.Observer(func(frame int, m *Map) ([]float64, error) {
		if frame != seen {
			Te.Errorf("Observer got frame %d, want %d", frame, seen)
		}
		seen++
		return nil, nil
	})
	last, err := Splat(seq, nil, ax, o)
	if err != nil {
		Te.Fatal(err)
	}
	if seen != 2 {
		Te.Errorf("The observer ran %d times, want 2", seen)
	}
	//the returned map belongs to the last frame
	direct, _, err := SplatFrame(f2, nil, ax, DefaultOptions())
	if err != nil {
		Te.Fatal(err)
	}
	for i := range last.Data {
		if last.Data[i] != direct.Data[i] {
			Te.Fatal("Splat didn't return the map of the last frame")
		}
	}
	//a drained source is rejected
	if _, err := Splat(seq, nil, ax, o); err == nil {
		Te.Error("Splatting a drained source should be an error")
	}
}

//recordingReporter keeps every Update call for inspection.
type recordingReporter struct {
	dones  []int
	totals []int
	aux    [][]float64
}

func (r *recordingReporter) Update(done, total int, aux ...float64) {
	r.dones = append(r.dones, done)
	r.totals = append(r.totals, total)
	r.aux = append(r.aux, aux)
}

func TestSplatReporterAux(Te *testing.T) {
	//whatever the observer returns per frame must reach the reporter as
	//that frame's auxiliary metric
	ax := unitGrid(Te)
	f1 := mat.NewDense(1, 3, []float64{0, 0, 0})
	f2 := mat.NewDense(1, 3, []float64{1, 0, 0})
	seq, err := NewFrameSeq([]*mat.Dense{f1, f2}, nil)
	if err != nil {
		Te.Fatal(err)
	}
	rep := new(recordingReporter)
	o := DefaultOptions()
	o.Frames(seq.Frames())
	o.Reporter(rep)
	o.Observer(func(frame int, m *Map) ([]float64, error) {
		return []float64{float64(frame) + 0.5}, nil
	})
	if _, err := Splat(seq, nil, ax, o); err != nil {
		Te.Fatal(err)
	}
	if len(rep.dones) != 2 {
		Te.Fatalf("The reporter ran %d times, want 2", len(rep.dones))
	}
	for i := range rep.dones {
		if rep.dones[i] != i+1 || rep.totals[i] != 2 {
			Te.Errorf("Update %d got counts %d/%d, want %d/2", i, rep.dones[i], rep.totals[i], i+1)
		}
		if len(rep.aux[i]) != 1 || rep.aux[i][0] != float64(i)+0.5 {
			Te.Errorf("Update %d got aux %v, want [%v]", i, rep.aux[i], float64(i)+0.5)
		}
	}
}

func TestFrameFilter(Te *testing.T) {
	f := mat.NewDense(4, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		2, 0, 0,
		3, 0, 0,
	})
	names := []string{"N", "CA", "CB", "O"}
	seq, err := NewFrameSeq([]*mat.Dense{f}, names)
	if err != nil {
		Te.Fatal(err)
	}
	bb, err := seq.Filter(KeepBackbone)
	if err != nil {
		Te.Fatal(err)
	}
	if bb.Len() != 3 {
		Te.Errorf("The backbone selection keeps %d atoms, want 3", bb.Len())
	}
	if bb.Names()[2] != "O" {
		Te.Errorf("Got label %s, want O", bb.Names()[2])
	}
	c := mat.NewDense(3, 3, nil)
	if err := bb.Next(c); err != nil {
		Te.Fatal(err)
	}
	if c.At(2, 0) != 3 {
		Te.Error("The kept coordinates don't match the kept atoms")
	}
	rng, err := seq.Filter(KeepRange(1, 2))
	if err != nil {
		Te.Fatal(err)
	}
	if rng.Len() != 2 || rng.Names()[0] != "CA" {
		Te.Error("The range selection came out wrong")
	}
	//the source sequence is untouched
	if seq.Len() != 4 {
		Te.Error("Filtering changed the source sequence")
	}
	if _, err := seq.Filter(func(i int, name string) bool { return false }); err == nil {
		Te.Error("An empty selection should be an error")
	}
}
