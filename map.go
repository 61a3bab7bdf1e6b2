/*
 * map.go, part of godens.
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
	"gonum.org/v1/gonum/floats"
)

// Grid holds the physical metadata of a density map: the position of the
// lower corner, the voxel spacing and the number of voxels per axis.
// Origin and Dx are given in physical (x,y,z) order and physical units
// (Angstroms, normally). Shape is in storage order: the physical x axis is
// the last, fastest-varying storage axis, as in the MRC format.
type Grid struct {
	Origin [3]float64
	Dx     [3]float64
	Shape  [3]int
}

//VoxelVolume returns the volume of one voxel.
func (G *Grid) VoxelVolume() float64 {
	return G.Dx[0] * G.Dx[1] * G.Dx[2]
}

//Voxels returns the total number of voxels in the grid.
func (G *Grid) Voxels() int {
	return G.Shape[0] * G.Shape[1] * G.Shape[2]
}

//SameShape returns true if G and G2 have the same shape.
func (G *Grid) SameShape(G2 *Grid) bool {
	return G.Shape == G2.Shape
}

// Map is a density grid together with its voxel values. Data is flat, in
// storage order, with the last storage axis fastest.
type Map struct {
	Grid
	Data []float64
}

//NewMap returns an all-zero map with the given metadata. It returns an error
//if any dimension is smaller than 1 or any voxel spacing is not positive.
func NewMap(origin, dx [3]float64, shape [3]int) (*Map, error) {
	for i := 0; i < 3; i++ {
		if shape[i] < 1 {
			return nil, CError{ErrBadShape, "", []string{"NewMap"}, true}
		}
		if dx[i] <= 0 {
			return nil, CError{ErrBadVoxel, "", []string{"NewMap"}, true}
		}
	}
	m := new(Map)
	m.Origin = origin
	m.Dx = dx
	m.Shape = shape
	m.Data = make([]float64, shape[0]*shape[1]*shape[2])
	return m, nil
}

//At returns the value at the storage indexes i,j,k (k fastest).
func (M *Map) At(i, j, k int) float64 {
	return M.Data[(i*M.Shape[1]+j)*M.Shape[2]+k]
}

//Set sets the value at the storage indexes i,j,k to v.
func (M *Map) Set(i, j, k int, v float64) {
	M.Data[(i*M.Shape[1]+j)*M.Shape[2]+k] = v
}

//Sum returns the sum of all voxel values.
func (M *Map) Sum() float64 {
	return floats.Sum(M.Data)
}

//Scale multiplies every voxel by f.
func (M *Map) Scale(f float64) {
	floats.Scale(f, M.Data)
}

//Copy returns a deep copy of the map.
func (M *Map) Copy() *Map {
	n := new(Map)
	n.Grid = M.Grid
	n.Data = make([]float64, len(M.Data))
	copy(n.Data, M.Data)
	return n
}

//transposed returns a map whose first and last storage axes are swapped.
//It is used to go from the physical (x,y,z) layout the splatter works in,
//to the (z,y,x) storage layout of the MRC format, and back.
func (M *Map) transposed() *Map {
	n := new(Map)
	n.Origin = M.Origin
	n.Dx = M.Dx
	n.Shape = [3]int{M.Shape[2], M.Shape[1], M.Shape[0]}
	n.Data = make([]float64, len(M.Data))
	for i := 0; i < M.Shape[0]; i++ {
		for j := 0; j < M.Shape[1]; j++ {
			for k := 0; k < M.Shape[2]; k++ {
				n.Data[(k*n.Shape[1]+j)*n.Shape[2]+i] = M.Data[(i*M.Shape[1]+j)*M.Shape[2]+k]
			}
		}
	}
	return n
}
