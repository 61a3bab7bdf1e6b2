/*
 * errors.go, part of godens.
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

import "fmt"

//This error predates the "wrapping" error system of Go (i.e. the "%w" directive
//and the errors package). It is kept for compatibility with the rest of the
//rmera libraries, which all decorate errors this way.

// Error is the interface for errors that all packages in this library implement.
// The Decorate method allows to add and retrieve info from the error, without
// changing its type or wrapping it around something else. The decoration slice
// should contain a list of the functions in the calling stack, plus, for each
// function, any relevant information, or nothing. If passed an empty string,
// Decorate should just return the current value, not add the empty string.
type Error interface {
	Error() string
	Decorate(string) []string
}

// LastFrameError has a do-nothing method to distinguish the harmless
// end-of-trajectory condition from real errors, so it can be filtered in a
// type-switch that looks for this interface.
type LastFrameError interface {
	Error
	NormalLastFrameTermination()
}

//errDecorate asserts that err implements Error and decorates it with the
//caller's name before returning it. It will panic if used on any other error.
func errDecorate(err error, caller string) error {
	err2 := err.(Error)
	err2.Decorate(caller)
	return err2
}

// CError is the concrete error for the dens package. It fulfills Error.
type CError struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err CError) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("godens error: %s", err.message)
	}
	return fmt.Sprintf("godens error in %s: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err CError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to
	//alter the receiver, it should work, since err.deco is a slice, and hence
	//a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing operation was associated,
//or an empty string.
func (err CError) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err CError) Critical() bool { return err.critical }

//Message texts for the errors returned by this package. Callers may match
//on these to tell the error classes of the taxonomy apart.
const (
	ErrNilCoordinates = "Given nil or empty coordinates"
	ErrBadSigma       = "The kernel width (sigma) must be positive"
	ErrBadVoxel       = "Zero or negative voxel spacing"
	ErrBadShape       = "Map dimensions must all be at least 1"
	ErrDegenerate     = "Degenerate map: the correlation denominator is zero"
	ErrShapeMismatch  = "Maps have incompatible shapes for this operation"
	ErrNotCubic       = "This operation requires cubic maps with isotropic spacing"
	ErrExists         = "Output file already exists, refusing to overwrite"
	ErrBadBlurRange   = "Invalid blur range: the minimum is larger than the maximum"
	ErrEmptyDir       = "No candidate maps found in the given directory"
	ErrUnIniRead      = "Frame source uninitialized or exhausted"
)

//lastFrameError implements LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing, it's there just to separate
//this type from other errors.
func (err lastFrameError) NormalLastFrameTermination() {}

func (err lastFrameError) FileName() string { return err.fileName }

func (err lastFrameError) Error() string { return "EOF" }

func (err lastFrameError) Critical() bool { return false }

func (err lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//NewLastFrameError returns the error signalling the normal end of a frame
//source. Frame-source implementations outside this package (trajectory
//readers) should use it too.
func NewLastFrameError(filename string, caller string) LastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
