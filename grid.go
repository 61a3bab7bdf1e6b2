/*
 * grid.go, part of godens.
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

	"gonum.org/v1/gonum/mat"
)

// Axes is the sampling grid the splatter rasterizes onto: one coordinate
// array per physical axis. Unlike Grid, everything here is in physical
// (x,y,z) order.
type Axes struct {
	Origin [3]float64
	Dx     [3]float64
	N      [3]int //grid points per physical axis
	X      []float64
	Y      []float64
	Z      []float64
}

//build fills the three coordinate arrays from origin, spacing and counts.
func (A *Axes) build() {
	A.X = make([]float64, A.N[0])
	A.Y = make([]float64, A.N[1])
	A.Z = make([]float64, A.N[2])
	for i := range A.X {
		A.X[i] = A.Origin[0] + float64(i)*A.Dx[0]
	}
	for i := range A.Y {
		A.Y[i] = A.Origin[1] + float64(i)*A.Dx[1]
	}
	for i := range A.Z {
		A.Z[i] = A.Origin[2] + float64(i)*A.Dx[2]
	}
}

//NewAxes builds a cubic grid sized and centered around the given coordinates
//(normally, the first frame of a trajectory). The cube side is twice the
//largest per-axis extent about the mean position, and the voxel count along
//each axis is forced odd so the grid has a central voxel. If center is true
//the grid is centered at the origin of coordinates instead of at the mean
//position (the caller is then expected to de-mean the coordinates before
//splatting; the Splat function does it when its Center option is set).
func NewAxes(coord *mat.Dense, sigma float64, center bool) (*Axes, error) {
	if coord == nil {
		return nil, CError{ErrNilCoordinates, "", []string{"NewAxes"}, true}
	}
	r, c := coord.Dims()
	if r < 1 || c != 3 {
		return nil, CError{ErrNilCoordinates, "", []string{"NewAxes"}, true}
	}
	if sigma <= 0 {
		return nil, CError{ErrBadSigma, "", []string{"NewAxes"}, true}
	}
	var mean [3]float64
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			mean[j] += coord.At(i, j)
		}
	}
	for j := 0; j < 3; j++ {
		mean[j] /= float64(r)
	}
	var ext float64
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			d := math.Abs(coord.At(i, j) - mean[j])
			if d > ext {
				ext = d
			}
		}
	}
	side := 2 * ext
	if side <= 0 {
		return nil, CError{"Degenerate bounding box: all coordinates are equal", "", []string{"NewAxes"}, true}
	}
	n := int(side / sigma)
	if n%2 == 0 {
		n++ //guarantees a centered grid
	}
	dx := side / float64(n)
	A := new(Axes)
	for j := 0; j < 3; j++ {
		A.Dx[j] = dx
		A.N[j] = n + 1
		if center {
			A.Origin[j] = -side / 2
		} else {
			A.Origin[j] = mean[j] - side/2
		}
	}
	A.build()
	return A, nil
}

//RefAxes builds a grid aligned to an existing reference map: same voxel
//spacing, same origin, and the reference's array dimensions. The map's
//storage order is the reverse of the physical order, so the counts are
//swapped here. If shift is not zero, shift voxel widths are subtracted
//from every origin component before building the coordinate arrays.
func RefAxes(ref *Map, shift float64) (*Axes, error) {
	if ref == nil {
		return nil, CError{ErrNilCoordinates, "", []string{"RefAxes"}, true}
	}
	A := new(Axes)
	for j := 0; j < 3; j++ {
		if ref.Shape[j] < 1 {
			return nil, CError{ErrBadShape, "", []string{"RefAxes"}, true}
		}
		if ref.Dx[j] <= 0 {
			return nil, CError{ErrBadVoxel, "", []string{"RefAxes"}, true}
		}
		A.N[j] = ref.Shape[2-j] //physical x is the map's fastest storage axis
		A.Dx[j] = ref.Dx[j]
		A.Origin[j] = ref.Origin[j] - shift*ref.Dx[0]
	}
	A.build()
	return A, nil
}

//ExplicitAxes builds a grid directly from its metadata, with the counts in
//physical order. Mostly a convenience for callers that know exactly the grid
//they want.
func ExplicitAxes(origin, dx [3]float64, n [3]int) (*Axes, error) {
	A := new(Axes)
	for j := 0; j < 3; j++ {
		if n[j] < 1 {
			return nil, CError{ErrBadShape, "", []string{"ExplicitAxes"}, true}
		}
		if dx[j] <= 0 {
			return nil, CError{ErrBadVoxel, "", []string{"ExplicitAxes"}, true}
		}
	}
	A.Origin = origin
	A.Dx = dx
	A.N = n
	A.build()
	return A, nil
}
