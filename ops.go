/*
 * ops.go, part of godens.
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

//ops.go contains the lower-complexity grid operations: dimension matching,
//spatial cropping, Gaussian blurring and the per-voxel standard deviation
//over a set of maps.

package dens

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//MatchTo pads cand with zeros into a map of the given storage shape, aligned
//at the origin corner. The voxel spacing and origin metadata of cand are
//preserved. If the destination shape equals cand's own shape, cand itself is
//returned, unchanged. A destination smaller than cand on any axis is a
//shape-mismatch error.
func MatchTo(cand *Map, shape [3]int) (*Map, error) {
	if cand.Shape == shape {
		return cand, nil
	}
	for i := 0; i < 3; i++ {
		if shape[i] < cand.Shape[i] {
			return nil, CError{ErrShapeMismatch, "", []string{"MatchTo"}, true}
		}
	}
	ret, err := NewMap(cand.Origin, cand.Dx, shape)
	if err != nil {
		return nil, errDecorate(err, "MatchTo")
	}
	for i := 0; i < cand.Shape[0]; i++ {
		for j := 0; j < cand.Shape[1]; j++ {
			src := (i*cand.Shape[1] + j) * cand.Shape[2]
			dst := (i*shape[1] + j) * shape[2]
			copy(ret.Data[dst:dst+cand.Shape[2]], cand.Data[src:src+cand.Shape[2]])
		}
	}
	return ret, nil
}

//MatchCube pads cand into a cube sized to its own largest dimension.
func MatchCube(cand *Map) (*Map, error) {
	side := cand.Shape[0]
	for _, v := range cand.Shape[1:] {
		if v > side {
			side = v
		}
	}
	ret, err := MatchTo(cand, [3]int{side, side, side})
	if err != nil {
		return nil, errDecorate(err, "MatchCube")
	}
	return ret, nil
}

//Crop extracts from m the box covering the given coordinates plus a margin
//of that many voxels per side, clipped at the grid edges. The origin of the
//returned map is displaced by the crop's lower corner.
func Crop(m *Map, coord *mat.Dense, margin int) (*Map, error) {
	if coord == nil {
		return nil, CError{ErrNilCoordinates, "", []string{"Crop"}, true}
	}
	nat, c := coord.Dims()
	if nat < 1 || c != 3 {
		return nil, CError{ErrNilCoordinates, "", []string{"Crop"}, true}
	}
	if margin < 0 {
		return nil, CError{"The crop margin can't be negative", "", []string{"Crop"}, true}
	}
	//bounding box in physical-axis index space
	var lo, hi [3]int
	for p := 0; p < 3; p++ {
		lo[p] = math.MaxInt32
		hi[p] = math.MinInt32
	}
	for i := 0; i < nat; i++ {
		for p := 0; p < 3; p++ {
			idx := int(math.Floor((coord.At(i, p) - m.Origin[p]) / m.Dx[p]))
			if idx < lo[p] {
				lo[p] = idx
			}
			if idx > hi[p] {
				hi[p] = idx
			}
		}
	}
	for p := 0; p < 3; p++ {
		n := m.Shape[2-p] //storage order is reversed
		lo[p] -= margin
		hi[p] += margin
		if lo[p] < 0 {
			lo[p] = 0
		}
		if hi[p] > n-1 {
			hi[p] = n - 1
		}
		if lo[p] > hi[p] {
			return nil, CError{"The coordinates fall entirely outside the map", "", []string{"Crop"}, true}
		}
	}
	var shape [3]int
	var origin [3]float64
	for p := 0; p < 3; p++ {
		shape[2-p] = hi[p] - lo[p] + 1
		origin[p] = m.Origin[p] + float64(lo[p])*m.Dx[p]
	}
	ret, err := NewMap(origin, m.Dx, shape)
	if err != nil {
		return nil, errDecorate(err, "Crop")
	}
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				ret.Set(i, j, k, m.At(i+lo[2], j+lo[1], k+lo[0]))
			}
		}
	}
	return ret, nil
}

//Blur returns a copy of m smoothed with an isotropic Gaussian of the given
//width (in physical units). The filter is applied separably along each axis,
//truncated at 4 widths, with reflecting boundaries.
func Blur(m *Map, sigma float64) (*Map, error) {
	if sigma <= 0 {
		return nil, CError{ErrBadSigma, "", []string{"Blur"}, true}
	}
	ret := m.Copy()
	tmp := make([]float64, len(ret.Data))
	for a := 0; a < 3; a++ {
		svox := sigma / m.Dx[2-a]
		radius := int(math.Ceil(4 * svox))
		if radius < 1 {
			radius = 1
		}
		kernel := make([]float64, 2*radius+1)
		for i := range kernel {
			d := float64(i - radius)
			kernel[i] = math.Exp(-d * d / (2 * svox * svox))
		}
		floats.Scale(1/floats.Sum(kernel), kernel)
		blurAxis(ret, tmp, a, kernel, radius)
		copy(ret.Data, tmp)
	}
	return ret, nil
}

//blurAxis convolves along storage axis a into dst.
func blurAxis(m *Map, dst []float64, a int, kernel []float64, radius int) {
	n := m.Shape[a]
	reflect := func(i int) int {
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			}
			if i >= n {
				i = 2*n - i - 1
			}
		}
		return i
	}
	var idx [3]int
	for i := 0; i < m.Shape[0]; i++ {
		for j := 0; j < m.Shape[1]; j++ {
			for k := 0; k < m.Shape[2]; k++ {
				var acc float64
				idx = [3]int{i, j, k}
				for t := -radius; t <= radius; t++ {
					pos := idx
					pos[a] = reflect(idx[a] + t)
					acc += kernel[t+radius] * m.At(pos[0], pos[1], pos[2])
				}
				dst[(i*m.Shape[1]+j)*m.Shape[2]+k] = acc
			}
		}
	}
}

//BlurValues resolves the blur configuration into the sequence of widths to
//apply. Giving only one endpoint means a single blur at that value; giving
//neither defaults to a single blur of one voxel width (def). An ascending
//range is expanded into n evenly spaced values; a minimum larger than the
//maximum is a configuration error.
func BlurValues(min, max float64, n int, def float64) ([]float64, error) {
	switch {
	case min <= 0 && max <= 0:
		return []float64{def}, nil
	case min > 0 && max <= 0:
		return []float64{min}, nil
	case min <= 0 && max > 0:
		return []float64{max}, nil
	case min > max:
		return nil, CError{ErrBadBlurRange, "", []string{"BlurValues"}, true}
	case min == max || n < 2:
		return []float64{min}, nil
	}
	return floats.Span(make([]float64, n), min, max), nil
}

//BlurSweep blurs m at each of the given widths and writes one output file
//per width, named <base>_blur_<width> plus the .mrc extension, in dir.
//Stale outputs of the same name are replaced.
func BlurSweep(m *Map, vals []float64, dir, base string, codec Codec) error {
	for _, v := range vals {
		b, err := Blur(m, v)
		if err != nil {
			return errDecorate(err, "BlurSweep")
		}
		name := filepath.Join(dir, fmt.Sprintf("%s_blur_%.3f.mrc", base, v))
		if err := WriteMap(codec, name, b, Clobber); err != nil {
			return errDecorate(err, "BlurSweep")
		}
	}
	return nil
}

//StdDevDir computes the per-voxel population standard deviation over all the
//maps in dir. All maps must share one shape; a mismatch is an error. The
//metadata of the first (lexicographically) map is kept for the result.
func StdDevDir(dir string, codec Codec) (*Map, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.mrc"))
	if err != nil {
		return nil, CError{err.Error(), dir, []string{"StdDevDir"}, true}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, CError{ErrEmptyDir, dir, []string{"StdDevDir"}, true}
	}
	maps := make([]*Map, 0, len(files))
	for _, f := range files {
		m, err := codec.Read(f)
		if err != nil {
			return nil, errDecorate(err, "StdDevDir")
		}
		if len(maps) > 0 && !maps[0].SameShape(&m.Grid) {
			return nil, CError{ErrShapeMismatch, f, []string{"StdDevDir"}, true}
		}
		maps = append(maps, m)
	}
	ret, err := NewMap(maps[0].Origin, maps[0].Dx, maps[0].Shape)
	if err != nil {
		return nil, errDecorate(err, "StdDevDir")
	}
	vals := make([]float64, len(maps))
	for i := range ret.Data {
		for j, m := range maps {
			vals[j] = m.Data[i]
		}
		ret.Data[i] = stat.PopStdDev(vals, nil)
	}
	return ret, nil
}
