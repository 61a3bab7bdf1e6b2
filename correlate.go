/*
 * correlate.go, part of godens.
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
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/floats"
)

//Corr returns the normalized cross-correlation between the reference and
//candidate maps, rounded to 4 decimal places. This is the raw normalized
//inner product over the full voxel arrays, with no mean subtraction, so two
//proportional maps correlate perfectly. If either map has a zero norm the
//correlation is undefined and a degenerate-map error is returned.
func Corr(ref, cand *Map) (float64, error) {
	if ref == nil || cand == nil {
		return 0, CError{ErrNilCoordinates, "", []string{"Corr"}, true}
	}
	if !ref.SameShape(&cand.Grid) {
		return 0, CError{ErrShapeMismatch, "", []string{"Corr"}, true}
	}
	num := floats.Dot(ref.Data, cand.Data)
	d1 := floats.Dot(ref.Data, ref.Data)
	d2 := floats.Dot(cand.Data, cand.Data)
	if d1 == 0 || d2 == 0 {
		return 0, CError{ErrDegenerate, "", []string{"Corr"}, true}
	}
	cc := num / math.Sqrt(d1*d2)
	return math.Round(cc*1e4) / 1e4, nil
}

// InputKind tags the ways a correlation candidate can be supplied.
type InputKind int

const (
	//SingleFile is one map file on disk.
	SingleFile InputKind = iota
	//Directory is a directory holding one or more candidate map files.
	Directory
	//InMemory is a map already loaded or produced in memory.
	InMemory
)

// Input is a correlation candidate, resolved once at the call boundary
// instead of re-inspected downstream: a file, a directory of files, or an
// in-memory map.
type Input struct {
	Kind InputKind
	Path string
	Map  *Map
}

//CorrMany correlates the reference against the candidate(s) in 'in' and
//returns a mapping from candidate label to coefficient. Directory candidates
//are labeled step_N, with N the index embedded in each filename; failures of
//individual candidates (unreadable files, degenerate or mismatched maps) are
//logged and skipped without aborting the batch. codec is needed for the
//SingleFile and Directory kinds, and may be nil for InMemory.
func CorrMany(ref *Map, in Input, codec Codec) (map[string]float64, error) {
	ret := make(map[string]float64)
	switch in.Kind {
	case InMemory:
		if in.Map == nil {
			return nil, CError{ErrNilCoordinates, "", []string{"CorrMany"}, true}
		}
		cc, err := Corr(ref, in.Map)
		if err != nil {
			return nil, errDecorate(err, "CorrMany")
		}
		ret["step_0"] = cc
	case SingleFile:
		m, err := codec.Read(in.Path)
		if err != nil {
			return nil, errDecorate(err, "CorrMany")
		}
		cc, err := Corr(ref, m)
		if err != nil {
			return nil, errDecorate(err, "CorrMany")
		}
		ret[stepKey(in.Path)] = cc
	case Directory:
		files, err := filepath.Glob(filepath.Join(in.Path, "*.mrc"))
		if err != nil {
			return nil, CError{err.Error(), in.Path, []string{"CorrMany"}, true}
		}
		sort.Strings(files)
		if len(files) == 0 {
			return nil, CError{ErrEmptyDir, in.Path, []string{"CorrMany"}, true}
		}
		for _, f := range files {
			m, err := codec.Read(f)
			if err != nil {
				log.Printf("godens: skipping candidate %s: %v", f, err)
				continue
			}
			cc, err := Corr(ref, m)
			if err != nil {
				log.Printf("godens: skipping candidate %s: %v", f, err)
				continue
			}
			ret[stepKey(f)] = cc
		}
	}
	return ret, nil
}

//stepKey derives the label for a candidate file: step_N, with N the last run
//of digits in the file's base name. Files carrying no index keep their base
//name, without the extension.
func stepKey(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	end := -1
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] >= '0' && base[i] <= '9' {
			end = i
			break
		}
	}
	if end < 0 {
		return base
	}
	start := end
	for start > 0 && base[start-1] >= '0' && base[start-1] <= '9' {
		start--
	}
	n, err := strconv.Atoi(base[start : end+1])
	if err != nil {
		return base //can't really happen
	}
	return fmt.Sprintf("step_%d", n)
}

//SaveCorr serializes a label->coefficient mapping as zstd-compressed JSON.
func SaveCorr(path string, corr map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return CError{err.Error(), path, []string{"os.Create", "SaveCorr"}, true}
	}
	defer f.Close()
	w, err := zstd.NewWriter(f)
	if err != nil {
		return CError{err.Error(), path, []string{"zstd.NewWriter", "SaveCorr"}, true}
	}
	if err := json.NewEncoder(w).Encode(corr); err != nil {
		w.Close()
		return CError{err.Error(), path, []string{"json.Encode", "SaveCorr"}, true}
	}
	if err := w.Close(); err != nil {
		return CError{err.Error(), path, []string{"zstd.Close", "SaveCorr"}, true}
	}
	return nil
}

//LoadCorr recovers a mapping saved by SaveCorr.
func LoadCorr(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, CError{err.Error(), path, []string{"os.Open", "LoadCorr"}, true}
	}
	defer f.Close()
	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, CError{err.Error(), path, []string{"zstd.NewReader", "LoadCorr"}, true}
	}
	defer r.Close()
	ret := make(map[string]float64)
	if err := json.NewDecoder(r).Decode(&ret); err != nil {
		return nil, CError{err.Error(), path, []string{"json.Decode", "LoadCorr"}, true}
	}
	return ret, nil
}
