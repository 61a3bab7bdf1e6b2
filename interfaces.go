/*
 * interfaces.go, part of godens.
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
	"log"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Framer is the contract for anything that can supply per-frame coordinates,
// typically a trajectory reader. It is the same shape as the Traj interface
// of the rmera trajectory readers, so those can be adapted trivially.
type Framer interface {

	//Is the source ready to be read?
	Readable() bool

	//Next puts the coordinates of the next frame in c, an Nx3 matrix.
	//The normal end of the source is signalled with a LastFrameError.
	Next(c *mat.Dense) error

	//Returns the number of atoms per frame
	Len() int
}

// Reporter is the contract for the progress-display collaborator. Update is
// called once per processed frame with the current and total counts, plus any
// auxiliary per-frame metric (say, a running correlation value).
type Reporter interface {
	Update(done, total int, aux ...float64)
}

// Codec persists maps to, and recovers them from, some volumetric file format.
// The mrc sub-package provides the MRC2014 implementation.
type Codec interface {
	Read(path string) (*Map, error)
	Write(path string, m *Map) error
}

// OverwritePolicy says what to do when the target of a map write exists
// already. The two policies are deliberately distinct: per-frame saves and
// dimension matching replace stale files, while cropping refuses to touch
// them.
type OverwritePolicy int

const (
	//Clobber deletes a pre-existing file, with a notice, and writes anew.
	Clobber OverwritePolicy = iota
	//Refuse returns an error if the target exists.
	Refuse
)

//WriteMap persists m to path with the given codec, applying the overwrite
//policy pol.
func WriteMap(c Codec, path string, m *Map, pol OverwritePolicy) error {
	if _, err := os.Stat(path); err == nil {
		if pol == Refuse {
			return CError{ErrExists, path, []string{"WriteMap"}, true}
		}
		log.Printf("godens: %s exists, the stale file will be replaced", path)
		if err := os.Remove(path); err != nil {
			return CError{err.Error(), path, []string{"os.Remove", "WriteMap"}, true}
		}
	}
	err := c.Write(path, m)
	if err != nil {
		return errDecorate(err, "WriteMap")
	}
	return nil
}

//FrameSeq is an in-memory frame source: a sequence of coordinate sets with a
//parallel slice of per-atom residue labels. It implements Framer.
type FrameSeq struct {
	frames []*mat.Dense
	names  []string
	cur    int
}

//NewFrameSeq builds a FrameSeq from the given frames and residue labels.
//names can be nil if no filtering by residue will be done.
func NewFrameSeq(frames []*mat.Dense, names []string) (*FrameSeq, error) {
	if len(frames) == 0 || frames[0] == nil {
		return nil, CError{ErrNilCoordinates, "", []string{"NewFrameSeq"}, true}
	}
	r, _ := frames[0].Dims()
	if names != nil && len(names) != r {
		return nil, CError{"Residue labels don't match the atom count", "", []string{"NewFrameSeq"}, true}
	}
	return &FrameSeq{frames: frames, names: names}, nil
}

//Readable returns true as long as frames remain to be read.
func (F *FrameSeq) Readable() bool {
	return F.cur < len(F.frames)
}

//Next copies the next frame into c. At the end of the sequence it returns
//a LastFrameError.
func (F *FrameSeq) Next(c *mat.Dense) error {
	if F.cur >= len(F.frames) {
		return NewLastFrameError("", "FrameSeq.Next")
	}
	if c != nil {
		c.Copy(F.frames[F.cur])
	}
	F.cur++
	return nil
}

//Len returns the number of atoms per frame.
func (F *FrameSeq) Len() int {
	r, _ := F.frames[0].Dims()
	return r
}

//Frames returns the total number of frames in the sequence.
func (F *FrameSeq) Frames() int {
	return len(F.frames)
}

//Names returns the per-atom residue labels, or nil.
func (F *FrameSeq) Names() []string {
	return F.names
}

//Reset rewinds the sequence so it can be read again.
func (F *FrameSeq) Reset() {
	F.cur = 0
}

//Filter returns a new sequence holding, for every frame, only the atoms for
//which keep returns true. keep gets the atom index and its label (or an empty
//string if the sequence carries no labels). The original sequence is left
//untouched, and rewound copies of the kept frames are returned.
func (F *FrameSeq) Filter(keep func(i int, name string) bool) (*FrameSeq, error) {
	nat := F.Len()
	idx := make([]int, 0, nat)
	for i := 0; i < nat; i++ {
		name := ""
		if F.names != nil {
			name = F.names[i]
		}
		if keep(i, name) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return nil, CError{"The selection keeps no atoms", "", []string{"Filter"}, true}
	}
	frames := make([]*mat.Dense, len(F.frames))
	for f, src := range F.frames {
		dst := mat.NewDense(len(idx), 3, nil)
		for newi, oldi := range idx {
			for j := 0; j < 3; j++ {
				dst.Set(newi, j, src.At(oldi, j))
			}
		}
		frames[f] = dst
	}
	var names []string
	if F.names != nil {
		names = make([]string, len(idx))
		for newi, oldi := range idx {
			names[newi] = F.names[oldi]
		}
	}
	return &FrameSeq{frames: frames, names: names}, nil
}

//names of the atoms making up a protein backbone, as labeled in most
//force fields.
var backboneNames = []string{"N", "CA", "C", "O"}

//KeepBackbone is a Filter predicate keeping only backbone atoms.
func KeepBackbone(i int, name string) bool {
	return isInString(backboneNames, name)
}

//KeepRange returns a Filter predicate keeping only the atoms with indexes in
//[first,last], counting from zero.
func KeepRange(first, last int) func(i int, name string) bool {
	return func(i int, name string) bool {
		return i >= first && i <= last
	}
}

//isInString returns true if test is in container, false otherwise.
//NOTE: to be replaced by slices.Contains at some point.
func isInString(container []string, test string) bool {
	if container == nil {
		return false
	}
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
