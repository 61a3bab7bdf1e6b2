/*
 * mrc.go, part of godens.
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

//Package mrc reads and writes density maps in the MRC2014 binary format
//(mode 2, 32-bit float voxels). Only little-endian files are supported.
//The voxel data is stored with the physical x axis fastest, which matches
//the storage order of dens.Map, so no transposition happens here.
package mrc

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	dens "github.com/rmera/godens"
)

//the MRC2014 header, 1024 bytes. Fields we don't use are kept so the
//binary layout stays right.
type header struct {
	Nx, Ny, Nz                int32 //columns (fastest), rows, sections
	Mode                      int32
	Nxstart, Nystart, Nzstart int32
	Mx, My, Mz                int32
	CellA                     [3]float32 //cell size in Angstroms
	CellB                     [3]float32 //cell angles, degrees
	MapC, MapR, MapS          int32
	DMin, DMax, DMean         float32
	Ispg                      int32
	Nsymbt                    int32
	Extra                     [25]int32
	Origin                    [3]float32 //MRC2014 origin, words 50-52
	MapString                 [4]byte    //"MAP "
	MachSt                    [4]byte
	Rms                       float32
	Nlabl                     int32
	Label                     [800]byte
}

const modeFloat32 int32 = 2

//Read opens the MRC file with the given name and returns its voxel array
//together with the voxel spacing and origin from the header.
func Read(name string) (*dens.Map, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"os.Open", "Read"}, true}
	}
	defer f.Close()
	m, _, err := decode(f, name)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	return m, nil
}

//decode parses a whole map from r.
func decode(r io.Reader, name string) (*dens.Map, *header, error) {
	h := new(header)
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, nil, Error{WrongFormat + ": " + err.Error(), name, []string{"binary.Read", "decode"}, true}
	}
	if string(h.MapString[:]) != "MAP " {
		return nil, nil, Error{WrongFormat + ": bad magic number", name, []string{"decode"}, true}
	}
	if h.Mode != modeFloat32 {
		return nil, nil, Error{fmt.Sprintf("%s: only mode 2 (float32) is supported, got %d", WrongFormat, h.Mode), name, []string{"decode"}, true}
	}
	if h.Nx < 1 || h.Ny < 1 || h.Nz < 1 {
		return nil, nil, Error{WrongFormat + ": non-positive dimensions", name, []string{"decode"}, true}
	}
	if h.Mx < 1 || h.My < 1 || h.Mz < 1 {
		return nil, nil, Error{WrongFormat + ": non-positive grid sampling", name, []string{"decode"}, true}
	}
	var dx [3]float64
	dx[0] = float64(h.CellA[0]) / float64(h.Mx)
	dx[1] = float64(h.CellA[1]) / float64(h.My)
	dx[2] = float64(h.CellA[2]) / float64(h.Mz)
	for _, v := range dx {
		if v <= 0 {
			return nil, nil, Error{WrongFormat + ": zero or negative voxel spacing", name, []string{"decode"}, true}
		}
	}
	//if the file skips the symmetry records we are fine; otherwise jump them.
	if h.Nsymbt > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(h.Nsymbt)); err != nil {
			return nil, nil, Error{WrongFormat + ": truncated symmetry block", name, []string{"decode"}, true}
		}
	}
	raw := make([]float32, int(h.Nx)*int(h.Ny)*int(h.Nz))
	if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
		return nil, nil, Error{WrongFormat + ": truncated voxel data", name, []string{"binary.Read", "decode"}, true}
	}
	origin := [3]float64{float64(h.Origin[0]), float64(h.Origin[1]), float64(h.Origin[2])}
	m, err := dens.NewMap(origin, dx, [3]int{int(h.Nz), int(h.Ny), int(h.Nx)})
	if err != nil {
		return nil, nil, errDecorate(err, "decode")
	}
	for i, v := range raw {
		m.Data[i] = float64(v)
	}
	return m, h, nil
}

//Write creates (or truncates) the MRC file with the given name and writes m
//to it, casting the voxel values to 32-bit floats and recomputing the
//min/max/mean/rms statistics of the header.
func Write(name string, m *dens.Map) error {
	f, err := os.Create(name)
	if err != nil {
		return Error{err.Error(), name, []string{"os.Create", "Write"}, true}
	}
	defer f.Close()
	if err := encode(f, name, m); err != nil {
		return errDecorate(err, "Write")
	}
	return nil
}

func encode(w io.Writer, name string, m *dens.Map) error {
	h := new(header)
	h.Nx = int32(m.Shape[2]) //x is the fastest storage axis
	h.Ny = int32(m.Shape[1])
	h.Nz = int32(m.Shape[0])
	h.Mode = modeFloat32
	h.Mx, h.My, h.Mz = h.Nx, h.Ny, h.Nz
	h.CellA[0] = float32(m.Dx[0] * float64(h.Mx))
	h.CellA[1] = float32(m.Dx[1] * float64(h.My))
	h.CellA[2] = float32(m.Dx[2] * float64(h.Mz))
	h.CellB = [3]float32{90, 90, 90}
	h.MapC, h.MapR, h.MapS = 1, 2, 3
	h.Ispg = 1
	h.Origin[0] = float32(m.Origin[0])
	h.Origin[1] = float32(m.Origin[1])
	h.Origin[2] = float32(m.Origin[2])
	copy(h.MapString[:], "MAP ")
	h.MachSt = [4]byte{0x44, 0x44, 0, 0} //little endian
	stats(m.Data, h)
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return Error{err.Error(), name, []string{"binary.Write", "encode"}, true}
	}
	raw := make([]float32, len(m.Data))
	for i, v := range m.Data {
		raw[i] = float32(v)
	}
	if err := binary.Write(w, binary.LittleEndian, raw); err != nil {
		return Error{err.Error(), name, []string{"binary.Write", "encode"}, true}
	}
	return nil
}

//stats fills the file-level statistics of the header from the data.
func stats(data []float64, h *header) {
	if len(data) == 0 {
		return
	}
	min, max := data[0], data[0]
	var sum float64
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(data))
	var sq float64
	for _, v := range data {
		sq += (v - mean) * (v - mean)
	}
	h.DMin = float32(min)
	h.DMax = float32(max)
	h.DMean = float32(mean)
	h.Rms = float32(math.Sqrt(sq / float64(len(data))))
}

//Threshold opens the MRC file with the given name for read-modify-write,
//zeroes every voxel at or below thr, recomputes the header statistics and
//rewrites the file in place.
func Threshold(name string, thr float64) error {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return Error{err.Error(), name, []string{"os.OpenFile", "Threshold"}, true}
	}
	defer f.Close()
	m, _, err := decode(f, name)
	if err != nil {
		return errDecorate(err, "Threshold")
	}
	for i, v := range m.Data {
		if v <= thr {
			m.Data[i] = 0
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Error{err.Error(), name, []string{"Seek", "Threshold"}, true}
	}
	if err := encode(f, name, m); err != nil {
		return errDecorate(err, "Threshold")
	}
	//any symmetry block of the original file is dropped on rewrite
	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return Error{err.Error(), name, []string{"Seek", "Threshold"}, true}
	}
	if err := f.Truncate(off); err != nil {
		return Error{err.Error(), name, []string{"Truncate", "Threshold"}, true}
	}
	return nil
}

// IO bundles the package-level Read and Write so the codec can be passed
// around as a dens.Codec value.
type IO struct{}

func (IO) Read(path string) (*dens.Map, error)  { return Read(path) }
func (IO) Write(path string, m *dens.Map) error { return Write(path, m) }

//Errors

//errDecorate asserts that the error implements dens.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(dens.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the error type for MRC files. It fulfills dens.Error.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("mrc file %s error: %s", err.filename, err.message)
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

//Format returns the format of the file (always "mrc") associated to the error
func (err Error) Format() string { return "mrc" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	WrongFormat = "Wrong format in the MRC file"
)
