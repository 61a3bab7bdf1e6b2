/*
 * doc.go, part of godens.
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

/*Package dens synthesizes volumetric atomic-density maps from sets of
coordinates and compares such maps against each other.



	**goDens capabilities**

    Builds a cubic sampling grid around a set of coordinates, or aligned
	to an existing reference map.

    Rasterizes each atom of a structure as a truncated Gaussian kernel
	onto the grid ("Gaussian splatting"), with optional solvent
	filtering and safe clipping at the grid edges. The splatting of one
	frame is distributed over several goroutines, with per-worker
	scratch grids merged deterministically.

    Computes the normalized cross-correlation between a reference map
	and one or many candidate maps.

    Pads, crops and blurs maps, and obtains the per-voxel standard
	deviation over a set of maps.

    Reads and writes maps in the MRC2014 binary format (the mrc
	sub-package) and estimates the resolution between two maps by
	Fourier shell correlation (the fsc sub-package).

Coordinates are given as Nx3 gonum mat.Dense matrices, where each row is one
point in 3D space. Maps store their voxel values in a flat slice in the storage
order of the MRC format: the physical x axis is the fastest-varying (last)
storage axis. Functions producing maps from coordinates take care of the
transposition, so a freshly splatted map can be written or compared directly.*/
package dens
