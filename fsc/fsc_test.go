/*
 * fsc_test.go, part of godens.
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

package fsc

import (
	"fmt"
	"math"
	"testing"

	dens "github.com/rmera/godens"
)

func noisyMap(Te *testing.T, n int, seed float64) *dens.Map {
	m, err := dens.NewMap([3]float64{}, [3]float64{1, 1, 1}, [3]int{n, n, n})
	if err != nil {
		Te.Fatal(err)
	}
	for i := range m.Data {
		m.Data[i] = math.Sin(seed*float64(i)) + 0.3*math.Cos(float64(3*i))
	}
	return m
}

func TestSelfFSC(Te *testing.T) {
	a := noisyMap(Te, 8, 1.7)
	c, err := FSC(a, a)
	if err != nil {
		Te.Fatal(err)
	}
	if len(c.Freq) < 2 {
		Te.Fatal("The self-FSC curve is too short")
	}
	fmt.Println("self-FSC over", len(c.Freq), "shells")
	for i, v := range c.Val {
		if math.Abs(v-1) > 1e-9 {
			Te.Fatalf("Self-FSC is %v at shell %d, want 1", v, i)
		}
		if i > 0 && c.Freq[i] <= c.Freq[i-1] {
			Te.Fatal("The frequency axis isn't increasing")
		}
	}
	//curves stay below the per-axis maximum frequency
	corner := float64(8/2) * (1.0 / 8)
	if c.Freq[len(c.Freq)-1] >= corner {
		Te.Errorf("The curve reaches %v, should stay below %v", c.Freq[len(c.Freq)-1], corner)
	}
	//a flat curve at 1 crosses every threshold at the highest frequency
	rhalf, err := c.Resolution(Half)
	if err != nil {
		Te.Fatal(err)
	}
	rgold, err := c.Resolution(Gold)
	if err != nil {
		Te.Fatal(err)
	}
	if rhalf != rgold {
		Te.Errorf("Got different resolutions %v and %v for a flat curve", rhalf, rgold)
	}
	want := 1 / c.Freq[len(c.Freq)-1]
	if math.Abs(rhalf-want) > 1e-9 {
		Te.Errorf("Got resolution %v, want %v", rhalf, want)
	}
}

func TestEstimate(Te *testing.T) {
	a := noisyMap(Te, 8, 1.7)
	b := noisyMap(Te, 8, 1.7)
	//add some high-frequency disagreement
	for i := range b.Data {
		b.Data[i] += 0.1 * math.Sin(float64(11*i))
	}
	c, rhalf, rgold, err := Estimate(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if len(c.Freq) < 2 {
		Te.Fatal("The curve is too short")
	}
	//the permissive threshold can never claim a worse resolution
	if rgold > rhalf {
		Te.Errorf("Resolution at 0.143 (%v) worse than at 0.5 (%v)", rgold, rhalf)
	}
	fmt.Println("resolutions:", rhalf, rgold)
}

func TestFSCRejections(Te *testing.T) {
	a := noisyMap(Te, 8, 1.7)
	small := noisyMap(Te, 6, 1.7)
	if _, err := FSC(a, small); err == nil {
		Te.Error("Maps of different shapes should be rejected")
	}
	rect, err := dens.NewMap([3]float64{}, [3]float64{1, 1, 1}, [3]int{8, 8, 6})
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := FSC(rect, rect); err == nil {
		Te.Error("Non-cubic maps should be rejected")
	}
	aniso, err := dens.NewMap([3]float64{}, [3]float64{1, 1, 1.5}, [3]int{8, 8, 8})
	if err != nil {
		Te.Fatal(err)
	}
	for i := range aniso.Data {
		aniso.Data[i] = 1
	}
	if _, err := FSC(aniso, aniso); err == nil {
		Te.Error("Anisotropic voxels should be rejected")
	}
	if _, err := FSC(a, nil); err == nil {
		Te.Error("A nil map should be rejected")
	}
}

func TestResolutionUnreached(Te *testing.T) {
	c := &Curve{Freq: []float64{0.1, 0.2, 0.3}, Val: []float64{0.1, 0.05, 0.01}}
	if _, err := c.Resolution(Half); err == nil {
		Te.Error("A curve below the threshold everywhere should be an error")
	}
}
