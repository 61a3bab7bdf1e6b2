/*
 * fsc.go, part of godens.
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

//Package fsc estimates the resolution between two density maps by Fourier
//shell correlation: the Fourier transforms of both maps are correlated over
//spherical shells of constant spatial frequency, and the resolution is read
//off the frequency where the resulting curve drops below a threshold.
package fsc

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	dens "github.com/rmera/godens"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

//The conventional FSC thresholds: 0.5, and the 0.143 "gold standard" used to
//report achievable resolution.
const (
	Half = 0.5
	Gold = 0.143
)

//how many points the curve is interpolated onto before searching for the
//threshold crossing.
const finePoints = 1000

// Curve is a Fourier shell correlation curve: correlation values over
// non-decreasing spatial frequencies (reciprocal physical units).
type Curve struct {
	Freq []float64
	Val  []float64
}

//FSC computes the Fourier shell correlation curve between two maps of equal,
//cubic shape and isotropic voxel spacing. The curve is restricted to
//frequencies strictly below the per-axis maximum ("corner") frequency, where
//shells stop being complete spheres.
func FSC(a, b *dens.Map) (*Curve, error) {
	if err := compatible(a, b); err != nil {
		return nil, errDecorate(err, "FSC")
	}
	n := a.Shape[0]
	side := a.Dx[0] * float64(n)
	df := 1 / side
	//standard DFT frequency bins, scaled to physical units
	freqs := make([]float64, n)
	for k := range freqs {
		if k <= (n-1)/2 {
			freqs[k] = float64(k) * df
		} else {
			freqs[k] = float64(k-n) * df
		}
	}
	corner := float64(n/2) * df
	if n%2 != 0 {
		corner = float64((n-1)/2) * df
	}
	//radial magnitudes, and the shell width: the smallest nonzero magnitude
	qr := make([]float64, n*n*n)
	qstep := math.Inf(1)
	qmax := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				q := math.Sqrt(freqs[i]*freqs[i] + freqs[j]*freqs[j] + freqs[k]*freqs[k])
				qr[(i*n+j)*n+k] = q
				if q > 0 && q < qstep {
					qstep = q
				}
				if q > qmax {
					qmax = q
				}
			}
		}
	}
	nbins := int(qmax / qstep)
	if nbins < 1 {
		return nil, Error{dens.ErrBadShape, []string{"FSC"}, true}
	}
	edges := make([]float64, nbins+1)
	for i := range edges {
		edges[i] = float64(i) * qstep
	}
	f1 := toComplex(a.Data)
	f2 := toComplex(b.Data)
	fft3(f1, n)
	fft3(f2, n)
	num := make([]float64, nbins)
	t1 := make([]float64, nbins)
	t2 := make([]float64, nbins)
	for v, q := range qr {
		//right-inclusive binning, shifted down so the first shell is 0
		shell := sort.SearchFloat64s(edges, q) - 1
		if shell < 0 || shell >= nbins {
			continue
		}
		num[shell] += real(f1[v] * cmplx.Conj(f2[v]))
		t1[shell] += real(f1[v] * cmplx.Conj(f1[v]))
		t2[shell] += real(f2[v] * cmplx.Conj(f2[v]))
	}
	c := new(Curve)
	for i := 0; i < nbins; i++ {
		f := edges[i+1]
		if f >= corner {
			break //aliased, incomplete shells
		}
		v := 0.0
		if d := t1[i] * t2[i]; d > 0 {
			v = num[i] / math.Sqrt(d)
		}
		c.Freq = append(c.Freq, f)
		c.Val = append(c.Val, v)
	}
	if len(c.Freq) < 2 {
		return nil, Error{"Map too small for a meaningful FSC curve", []string{"FSC"}, true}
	}
	return c, nil
}

//Resolution interpolates the curve onto a fine frequency axis and returns
//the resolution (reciprocal of frequency) at the highest frequency where the
//curve still reaches the given threshold. It fails if the curve is below the
//threshold everywhere.
func (c *Curve) Resolution(threshold float64) (float64, error) {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(c.Freq, c.Val); err != nil {
		return 0, Error{err.Error(), []string{"interp.Fit", "Resolution"}, true}
	}
	fine := floats.Span(make([]float64, finePoints), c.Freq[0], c.Freq[len(c.Freq)-1])
	for i := len(fine) - 1; i >= 0; i-- {
		if pl.Predict(fine[i]) >= threshold {
			return 1 / fine[i], nil
		}
	}
	return 0, Error{fmt.Sprintf("The FSC curve never reaches %v", threshold), []string{"Resolution"}, true}
}

// Estimate is the one-call version: the FSC curve between a and b plus the
// resolutions at the 0.5 and 0.143 thresholds.
func Estimate(a, b *dens.Map) (*Curve, float64, float64, error) {
	c, err := FSC(a, b)
	if err != nil {
		return nil, 0, 0, err
	}
	rhalf, err := c.Resolution(Half)
	if err != nil {
		return nil, 0, 0, err
	}
	rgold, err := c.Resolution(Gold)
	if err != nil {
		return nil, 0, 0, err
	}
	return c, rhalf, rgold, nil
}

//compatible returns nil if the two maps can be compared shell-wise.
func compatible(a, b *dens.Map) error {
	if a == nil || b == nil {
		return Error{dens.ErrNilCoordinates, []string{"FSC"}, true}
	}
	if !a.SameShape(&b.Grid) {
		return Error{dens.ErrShapeMismatch, []string{"FSC"}, true}
	}
	if a.Shape[0] != a.Shape[1] || a.Shape[1] != a.Shape[2] {
		return Error{dens.ErrNotCubic, []string{"FSC"}, true}
	}
	const tol = 1e-6
	for i := 1; i < 3; i++ {
		if math.Abs(a.Dx[i]-a.Dx[0]) > tol*a.Dx[0] || math.Abs(b.Dx[i]-b.Dx[0]) > tol*b.Dx[0] {
			return Error{dens.ErrNotCubic, []string{"FSC"}, true}
		}
	}
	return nil
}

func toComplex(data []float64) []complex128 {
	ret := make([]complex128, len(data))
	for i, v := range data {
		ret[i] = complex(v, 0)
	}
	return ret
}

//fft3 computes the (unnormalized) 3D DFT of a cubic n×n×n array in place, as
//three passes of 1D transforms, one along each axis.
func fft3(data []complex128, n int) {
	fft := fourier.NewCmplxFFT(n)
	line := make([]complex128, n)
	//last axis: contiguous lines
	for off := 0; off < len(data); off += n {
		fft.Coefficients(data[off:off+n], data[off:off+n])
	}
	//middle axis
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			base := i*n*n + k
			for j := 0; j < n; j++ {
				line[j] = data[base+j*n]
			}
			fft.Coefficients(line, line)
			for j := 0; j < n; j++ {
				data[base+j*n] = line[j]
			}
		}
	}
	//first axis
	for j := 0; j < n; j++ {
		for k := 0; k < n; k++ {
			base := j*n + k
			for i := 0; i < n; i++ {
				line[i] = data[base+i*n*n]
			}
			fft.Coefficients(line, line)
			for i := 0; i < n; i++ {
				data[base+i*n*n] = line[i]
			}
		}
	}
}

//Errors

//errDecorate asserts that the error implements dens.Error and decorates it
//with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(dens.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the error type for the fsc package. It fulfills dens.Error.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("godens/fsc error: %s", err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
