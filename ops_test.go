/*
 * ops_test.go, part of godens.
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
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMatchTo(Te *testing.T) {
	m := testMap(Te, 3, func(i int) float64 { return float64(i) })
	//matching a map to its own shape returns it untouched
	same, err := MatchTo(m, m.Shape)
	if err != nil {
		Te.Fatal(err)
	}
	if same != m {
		Te.Error("Matching to the same shape should return the map itself")
	}
	padded, err := MatchTo(m, [3]int{5, 4, 3})
	if err != nil {
		Te.Fatal(err)
	}
	if padded.Shape != [3]int{5, 4, 3} {
		Te.Fatalf("Got shape %v, want [5 4 3]", padded.Shape)
	}
	//the payload sits at the origin corner, the padding is zero
	if math.Abs(padded.Sum()-m.Sum()) > 1e-12 {
		Te.Error("Padding changed the total density")
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				if padded.At(i, j, k) != m.At(i, j, k) {
					Te.Fatal("The original voxels moved during padding")
				}
			}
		}
	}
	if padded.At(4, 3, 2) != 0 {
		Te.Error("The padding isn't zero")
	}
	if _, err := MatchTo(m, [3]int{2, 5, 5}); err == nil {
		Te.Error("Shrinking through MatchTo should be an error")
	}
}

func TestMatchCube(Te *testing.T) {
	m, err := NewMap([3]float64{}, [3]float64{1, 1, 1}, [3]int{2, 5, 3})
	if err != nil {
		Te.Fatal(err)
	}
	cube, err := MatchCube(m)
	if err != nil {
		Te.Fatal(err)
	}
	if cube.Shape != [3]int{5, 5, 5} {
		Te.Errorf("Got shape %v, want [5 5 5]", cube.Shape)
	}
}

func TestCrop(Te *testing.T) {
	//a 7x7x7 unit grid with a recognizable pattern
	m := testMap(Te, 7, func(i int) float64 { return float64(i % 13) })
	//coordinates covering the 2..4 region of every physical axis
	coord := mat.NewDense(2, 3, []float64{2.1, 2.1, 2.1, 4.2, 4.2, 4.2})
	c, err := Crop(m, coord, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if c.Shape != [3]int{3, 3, 3} {
		Te.Fatalf("Got shape %v, want [3 3 3]", c.Shape)
	}
	for j := 0; j < 3; j++ {
		if math.Abs(c.Origin[j]-2) > 1e-12 {
			Te.Errorf("Got origin %v on axis %d, want 2", c.Origin[j], j)
		}
	}
	if c.At(0, 0, 0) != m.At(2, 2, 2) {
		Te.Error("The cropped voxels don't match the source region")
	}
	//a margin grows the box, clipped at the grid edge
	cm, err := Crop(m, coord, 10)
	if err != nil {
		Te.Fatal(err)
	}
	if cm.Shape != m.Shape {
		Te.Error("An oversized margin should clip to the whole map")
	}
	out := mat.NewDense(1, 3, []float64{100, 100, 100})
	if _, err := Crop(m, out, 0); err == nil {
		Te.Error("Coordinates outside the map should be an error")
	}
	if _, err := Crop(m, coord, -1); err == nil {
		Te.Error("A negative margin should be an error")
	}
}

func TestBlur(Te *testing.T) {
	//blurring a constant map with a normalized kernel changes nothing
	flat := testMap(Te, 8, func(i int) float64 { return 3.25 })
	b, err := Blur(flat, 1.5)
	if err != nil {
		Te.Fatal(err)
	}
	for _, v := range b.Data {
		if math.Abs(v-3.25) > 1e-9 {
			Te.Fatal("Blurring a constant map changed its values")
		}
	}
	//blurring spreads a point without moving its center
	point := testMap(Te, 9, func(i int) float64 { return 0 })
	point.Set(4, 4, 4, 1)
	b, err = Blur(point, 1.0)
	if err != nil {
		Te.Fatal(err)
	}
	if b.At(4, 4, 4) >= 1 || b.At(4, 4, 4) <= b.At(4, 4, 3) {
		Te.Error("The blurred point should still peak, lower, at its voxel")
	}
	if b.At(4, 4, 3) != b.At(4, 4, 5) {
		Te.Error("The blur isn't symmetric")
	}
	if _, err := Blur(point, 0); err == nil {
		Te.Error("A non-positive blur width should be an error")
	}
}

func TestBlurValues(Te *testing.T) {
	//no endpoints: one blur at the default width
	v, err := BlurValues(0, 0, 5, 0.7)
	if err != nil || len(v) != 1 || v[0] != 0.7 {
		Te.Errorf("Got %v, %v; want [0.7]", v, err)
	}
	//one endpoint: a single blur at that value
	v, err = BlurValues(1.2, 0, 5, 0.7)
	if err != nil || len(v) != 1 || v[0] != 1.2 {
		Te.Errorf("Got %v, %v; want [1.2]", v, err)
	}
	v, err = BlurValues(0, 2.5, 5, 0.7)
	if err != nil || len(v) != 1 || v[0] != 2.5 {
		Te.Errorf("Got %v, %v; want [2.5]", v, err)
	}
	//a full range expands to n evenly spaced widths
	v, err = BlurValues(1, 3, 5, 0.7)
	if err != nil {
		Te.Fatal(err)
	}
	if len(v) != 5 || v[0] != 1 || v[4] != 3 || math.Abs(v[1]-1.5) > 1e-12 {
		Te.Errorf("Got %v, want [1 1.5 2 2.5 3]", v)
	}
	if _, err := BlurValues(3, 1, 5, 0.7); err == nil {
		Te.Error("A descending range should be an error")
	}
}

func TestBlurSweep(Te *testing.T) {
	dir := Te.TempDir()
	codec := jsonCodec{}
	m := testMap(Te, 6, func(i int) float64 { return float64(i%7) + 1 })
	if err := BlurSweep(m, []float64{1, 2}, dir, "den", codec); err != nil {
		Te.Fatal(err)
	}
	for _, name := range []string{"den_blur_1.000.mrc", "den_blur_2.000.mrc"} {
		if _, err := codec.Read(filepath.Join(dir, name)); err != nil {
			Te.Errorf("Missing or unreadable sweep output %s: %v", name, err)
		}
	}
	//stale outputs are replaced, not an error
	if err := BlurSweep(m, []float64{1}, dir, "den", codec); err != nil {
		Te.Error("A sweep should replace its own stale outputs:", err)
	}
}

func TestStdDevDir(Te *testing.T) {
	dir := Te.TempDir()
	codec := jsonCodec{}
	m := testMap(Te, 5, func(i int) float64 { return math.Sin(float64(i)) })
	for _, name := range []string{"a.mrc", "b.mrc"} {
		if err := codec.Write(filepath.Join(dir, name), m); err != nil {
			Te.Fatal(err)
		}
	}
	sd, err := StdDevDir(dir, codec)
	if err != nil {
		Te.Fatal(err)
	}
	for _, v := range sd.Data {
		if v != 0 {
			Te.Fatal("Identical maps should have zero deviation everywhere")
		}
	}
	//two maps differing by a constant 2 deviate by exactly 1 everywhere
	m2 := m.Copy()
	for i := range m2.Data {
		m2.Data[i] += 2
	}
	if err := codec.Write(filepath.Join(dir, "b.mrc"), m2); err != nil {
		Te.Fatal(err)
	}
	sd, err = StdDevDir(dir, codec)
	if err != nil {
		Te.Fatal(err)
	}
	for _, v := range sd.Data {
		if math.Abs(v-1) > 1e-9 {
			Te.Fatalf("Got deviation %v, want 1", v)
		}
	}
	//a shape mismatch in the directory is fatal
	small := testMap(Te, 3, func(i int) float64 { return 1 })
	if err := codec.Write(filepath.Join(dir, "c.mrc"), small); err != nil {
		Te.Fatal(err)
	}
	if _, err := StdDevDir(dir, codec); err == nil {
		Te.Error("Mixed shapes in a directory should be an error")
	}
	if _, err := StdDevDir(Te.TempDir(), codec); err == nil {
		Te.Error("An empty directory should be an error")
	}
}
