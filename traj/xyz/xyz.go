/*
 * xyz.go, part of godens.
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

//Package xyz reads multi-frame XYZ trajectory files. Each frame is an atom
//count line, a comment line and one line per atom: a label followed by the 3
//cartesian coordinates. An optional 5th column, if present, is taken as the
//residue name of the atom (so water can be told apart from solute).
package xyz

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	dens "github.com/rmera/godens"
	"gonum.org/v1/gonum/mat"
)

//XyzR is a streaming reader for multi-frame XYZ files. It implements
//dens.Framer.
type XyzR struct {
	f        *os.File
	h        *bufio.Reader
	natoms   int
	filename string
	readable bool
	names    []string
}

//New opens the XYZ file with the given name and leaves the reader ready to
//stream frames. The atom count and per-atom labels of the first frame are
//taken as those of the whole trajectory.
func New(name string) (*XyzR, error) {
	X := new(XyzR)
	var err error
	X.f, err = os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	X.filename = name
	X.h = bufio.NewReader(X.f)
	line, err := X.h.ReadString('\n')
	if err != nil {
		return nil, Error{"Empty or truncated XYZ file", name, []string{"New"}, true}
	}
	X.natoms, err = strconv.Atoi(strings.TrimSpace(line))
	if err != nil || X.natoms < 1 {
		return nil, Error{"The first line is not an atom count", name, []string{"New"}, true}
	}
	X.readable = true
	return X, nil
}

//Readable returns true if the trajectory is ready to deliver frames.
func (X *XyzR) Readable() bool {
	return X.readable
}

//Len returns the number of atoms per frame.
func (X *XyzR) Len() int {
	return X.natoms
}

//Names returns the per-atom labels collected from the first frame read, or
//nil if no frame has been read yet. Files with a residue column report that;
//the rest report the element symbol.
func (X *XyzR) Names() []string {
	return X.names
}

//Close closes the underlying file. The reader is not usable afterwards.
func (X *XyzR) Close() {
	if X == nil || !X.readable {
		return
	}
	X.f.Close()
	X.readable = false
}

//Next puts the coordinates of the next frame in c, which must be natoms x 3.
//Giving a nil c skips the frame. The normal end of the trajectory is
//signalled with a dens.LastFrameError.
func (X *XyzR) Next(c *mat.Dense) error {
	if !X.readable {
		return Error{dens.ErrUnIniRead, X.filename, []string{"Next"}, true}
	}
	//on every frame but the first, the count line is still unread
	if X.natoms > 0 && X.names != nil {
		line, err := X.h.ReadString('\n')
		if err != nil {
			X.Close()
			return dens.NewLastFrameError(X.filename, "Next")
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return Error{"Frame header is not an atom count", X.filename, []string{"Next"}, true}
		}
		if n != X.natoms {
			return Error{fmt.Sprintf("Frame has %d atoms, %d expected", n, X.natoms), X.filename, []string{"Next"}, true}
		}
	}
	if _, err := X.h.ReadString('\n'); err != nil { //comment line
		X.Close()
		return dens.NewLastFrameError(X.filename, "Next")
	}
	firstFrame := X.names == nil
	if firstFrame {
		X.names = make([]string, X.natoms)
	}
	for i := 0; i < X.natoms; i++ {
		line, err := X.h.ReadString('\n')
		if err != nil && line == "" {
			if i == 0 && !firstFrame {
				X.Close()
				return dens.NewLastFrameError(X.filename, "Next")
			}
			return Error{"Truncated frame", X.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return Error{fmt.Sprintf("Atom line %d ill formed", i), X.filename, []string{"Next"}, true}
		}
		if firstFrame {
			X.names[i] = fields[0]
			if len(fields) >= 5 {
				X.names[i] = fields[4]
			}
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return Error{fmt.Sprintf("Atom line %d: %s", i, err.Error()), X.filename, []string{"Next"}, true}
			}
			if c != nil {
				c.Set(i, j, v)
			}
		}
	}
	return nil
}

//ReadAll slurps the whole trajectory into memory as a dens.FrameSeq, with the
//per-atom labels attached. The reader is closed afterwards.
func ReadAll(name string) (*dens.FrameSeq, error) {
	X, err := New(name)
	if err != nil {
		return nil, errDecorate(err, "ReadAll")
	}
	defer X.Close()
	var frames []*mat.Dense
	for {
		c := mat.NewDense(X.Len(), 3, nil)
		err := X.Next(c)
		if err != nil {
			if _, ok := err.(dens.LastFrameError); ok {
				break
			}
			return nil, errDecorate(err, "ReadAll")
		}
		frames = append(frames, c)
	}
	if len(frames) == 0 {
		return nil, Error{"The file contains no complete frame", name, []string{"ReadAll"}, true}
	}
	ret, err := dens.NewFrameSeq(frames, X.Names())
	if err != nil {
		return nil, errDecorate(err, "ReadAll")
	}
	return ret, nil
}

//Errors

//errDecorate asserts that the error implements dens.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(dens.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the error type for XYZ trajectory files. It fulfills dens.Error.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "xyz") associated to the error
func (err Error) Format() string { return "xyz" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
