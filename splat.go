/*
 * splat.go, part of godens.
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
	"path/filepath"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

//residue names taken as solvent when water filtering is on.
var waterNames = []string{"SOL", "WAT", "HOH"}

// FrameObserver is called once per completed frame with the frame index and
// the finished map for that frame. It lets a caller stream per-frame analyses
// (typically, correlation against a reference) without the splatter knowing
// anything about them. Whatever metrics it returns are handed to the progress
// reporter as that frame's auxiliary values; returning nil metrics is fine.
type FrameObserver func(frame int, m *Map) ([]float64, error)

// Options holds the settings for the splatter.
type Options struct {
	sigma    float64
	cutoff   float64
	nowater  bool
	center   bool
	cpus     int
	frames   int
	savedir  string
	codec    Codec
	observer FrameObserver
	reporter Reporter
}

//DefaultOptions returns an Options with the default settings: a kernel width
//of 2, a cutoff radius of 6, no solvent filtering and as many workers as
//logical CPUs.
func DefaultOptions() *Options {
	o := new(Options)
	o.sigma = 2.0
	o.cutoff = 6.0
	o.cpus = runtime.NumCPU()
	return o
}

//Sigma returns the Gaussian kernel width and sets it, if a valid
//value is given.
func (o *Options) Sigma(sigma ...float64) float64 {
	ret := o.sigma
	if len(sigma) > 0 && sigma[0] > 0 {
		o.sigma = sigma[0]
	}
	return ret
}

//Cutoff returns the kernel truncation radius and sets it, if a valid
//value is given.
func (o *Options) Cutoff(cutoff ...float64) float64 {
	ret := o.cutoff
	if len(cutoff) > 0 && cutoff[0] > 0 {
		o.cutoff = cutoff[0]
	}
	return ret
}

//NoWater returns whether solvent atoms are excluded from the density,
//and sets the value to the one given, if any.
func (o *Options) NoWater(nowater ...bool) bool {
	ret := o.nowater
	if len(nowater) > 0 {
		o.nowater = nowater[0]
	}
	return ret
}

//Center returns whether each frame is de-meaned before splatting,
//and sets the value to the one given, if any.
func (o *Options) Center(center ...bool) bool {
	ret := o.center
	if len(center) > 0 {
		o.center = center[0]
	}
	return ret
}

//Cpus returns the number of goroutines used to splat each frame and sets it,
//if a valid value is given.
func (o *Options) Cpus(cpus ...int) int {
	ret := o.cpus
	if len(cpus) > 0 && cpus[0] > 0 {
		o.cpus = cpus[0]
	}
	return ret
}

//Frames returns the expected total number of frames (used only for progress
//reporting; 0 means unknown) and sets it, if a valid value is given.
func (o *Options) Frames(frames ...int) int {
	ret := o.frames
	if len(frames) > 0 && frames[0] >= 0 {
		o.frames = frames[0]
	}
	return ret
}

//SaveEach makes the splatter persist every frame's map as step_N files in
//dir, written with the given codec. Pre-existing files of the same name are
//replaced, with a notice. Giving an empty dir disables per-frame saving.
func (o *Options) SaveEach(dir string, c Codec) {
	o.savedir = dir
	o.codec = c
}

//Observer returns the per-frame callback and sets it, if one is given.
func (o *Options) Observer(f ...FrameObserver) FrameObserver {
	ret := o.observer
	if len(f) > 0 {
		o.observer = f[0]
	}
	return ret
}

//Reporter returns the progress collaborator and sets it, if one is given.
func (o *Options) Reporter(r ...Reporter) Reporter {
	ret := o.reporter
	if len(r) > 0 {
		o.reporter = r[0]
	}
	return ret
}

//SplatFrame rasterizes one frame onto the grid given by ax: every atom
//becomes a truncated isotropic Gaussian, exp(-3d²/2σ²) up to the cutoff
//radius, accumulated additively onto the voxels. Atoms whose residue label
//(from names, which can be nil) matches a water residue are skipped when the
//NoWater option is set. Atoms at or beyond the grid edge contribute only
//their in-bounds portion, which can be nothing. The resulting grid is scaled
//so its sum equals the number of contributing atoms, divided by the voxel
//volume, and returned in storage (z,y,x) order, together with that count.
func SplatFrame(coord *mat.Dense, names []string, ax *Axes, o *Options) (*Map, int, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if coord == nil {
		return nil, 0, CError{ErrNilCoordinates, "", []string{"SplatFrame"}, true}
	}
	nat, c := coord.Dims()
	if nat < 1 || c != 3 {
		return nil, 0, CError{ErrNilCoordinates, "", []string{"SplatFrame"}, true}
	}
	if names != nil && len(names) != nat {
		return nil, 0, CError{"Residue labels don't match the atom count", "", []string{"SplatFrame"}, true}
	}
	var offset [3]float64
	if o.center {
		for i := 0; i < nat; i++ {
			for j := 0; j < 3; j++ {
				offset[j] += coord.At(i, j)
			}
		}
		for j := 0; j < 3; j++ {
			offset[j] /= float64(nat)
		}
	}
	//the atoms that will actually contribute
	atoms := make([]int, 0, nat)
	for i := 0; i < nat; i++ {
		if o.nowater && names != nil && isInString(waterNames, names[i]) {
			continue
		}
		atoms = append(atoms, i)
	}
	eff := len(atoms)
	nvox := ax.N[0] * ax.N[1] * ax.N[2]
	cpus := o.cpus
	if cpus > len(atoms) && len(atoms) > 0 {
		cpus = len(atoms)
	}
	if cpus < 1 {
		cpus = 1
	}
	//Each worker accumulates on its own scratch grid. The scratch grids are
	//then merged in worker order, so the summation order does not depend on
	//scheduling.
	scratch := make([][]float64, cpus)
	var wg sync.WaitGroup
	chunk := (len(atoms) + cpus - 1) / cpus
	for w := 0; w < cpus; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(atoms) {
			hi = len(atoms)
		}
		scratch[w] = make([]float64, nvox)
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(grid []float64, idx []int) {
			defer wg.Done()
			for _, i := range idx {
				splatAtom(grid, coord, i, offset, ax, o)
			}
		}(scratch[w], atoms[lo:hi])
	}
	wg.Wait()
	data := scratch[0]
	for w := 1; w < cpus; w++ {
		for i, v := range scratch[w] {
			data[i] += v
		}
	}
	phys := new(Map)
	phys.Origin = ax.Origin
	phys.Dx = ax.Dx
	phys.Shape = [3]int{ax.N[0], ax.N[1], ax.N[2]} //physical order, for now
	phys.Data = data
	total := phys.Sum()
	if total > 0 {
		phys.Scale(float64(eff) / (total * phys.VoxelVolume()))
	}
	return phys.transposed(), eff, nil
}

//splatAtom accumulates the kernel of one atom onto grid (in physical layout,
//z fastest).
func splatAtom(grid []float64, coord *mat.Dense, at int, offset [3]float64, ax *Axes, o *Options) {
	var pos [3]float64
	var lo, hi [3]int
	r := o.cutoff
	for j := 0; j < 3; j++ {
		pos[j] = coord.At(at, j) - offset[j]
		rel := pos[j] - ax.Origin[j]
		lo[j] = int(math.Floor((rel - r) / ax.Dx[j]))
		hi[j] = int(math.Ceil((rel + r) / ax.Dx[j]))
		if lo[j] < 0 {
			lo[j] = 0
		}
		if hi[j] > ax.N[j]-1 {
			hi[j] = ax.N[j] - 1
		}
		if lo[j] > hi[j] {
			return //entirely out of the grid, nothing to add
		}
	}
	s2 := 2 * o.sigma * o.sigma
	for ix := lo[0]; ix <= hi[0]; ix++ {
		dx := ax.X[ix] - pos[0]
		for iy := lo[1]; iy <= hi[1]; iy++ {
			dy := ax.Y[iy] - pos[1]
			base := (ix*ax.N[1] + iy) * ax.N[2]
			for iz := lo[2]; iz <= hi[2]; iz++ {
				dz := ax.Z[iz] - pos[2]
				d2 := dx*dx + dy*dy + dz*dz
				grid[base+iz] += math.Exp(-3 * d2 / s2)
			}
		}
	}
}

//Splat rasterizes every frame supplied by traj onto the grid given by ax.
//names carries the per-atom residue labels (nil disables residue filtering).
//Each finished frame is handed to the observer, persisted as step_N in the
//save directory (if per-frame saving was requested) and counted on the
//progress reporter. The map of the last frame read is returned.
func Splat(traj Framer, names []string, ax *Axes, o *Options) (*Map, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if traj == nil || !traj.Readable() {
		return nil, CError{ErrUnIniRead, "", []string{"Splat"}, true}
	}
	coord := mat.NewDense(traj.Len(), 3, nil)
	var last *Map
	read := 0
	for i := 0; ; i++ {
		err := traj.Next(coord)
		if err != nil {
			if _, ok := err.(LastFrameError); ok {
				break
			}
			if err, ok := err.(Error); ok {
				err.Decorate(fmt.Sprintf("Splat: failed reading the %d th frame", i))
				return nil, err
			}
			return nil, err
		}
		m, _, err := SplatFrame(coord, names, ax, o)
		if err != nil {
			return nil, errDecorate(err, "Splat")
		}
		var aux []float64
		if o.observer != nil {
			aux, err = o.observer(i, m)
			if err != nil {
				return nil, errDecorate(err, "Splat")
			}
		}
		if o.savedir != "" && o.codec != nil {
			name := filepath.Join(o.savedir, fmt.Sprintf("step_%d.mrc", i))
			if err := WriteMap(o.codec, name, m, Clobber); err != nil {
				return nil, errDecorate(err, "Splat")
			}
		}
		if o.reporter != nil {
			o.reporter.Update(i+1, o.frames, aux...)
		}
		last = m
		read++
	}
	if read == 0 {
		return nil, CError{"The frame source was empty", "", []string{"Splat"}, true}
	}
	return last, nil
}
