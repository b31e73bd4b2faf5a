// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Site is the numerator/denominator pair of a ratio statistic at a
// single genomic site.
type Site struct {
	Num float64
	Den float64
}

// SiteReader is a source of sites in genomic position order.
//
// ReadSites follows io.Reader conventions: it fills up to len(dst)
// sites, returns the number filled, and returns io.EOF (possibly
// along with n > 0) when the source is exhausted.
type SiteReader interface {
	ReadSites(dst []Site) (int, error)
}

// SliceSites is an in-memory SiteReader. Call Reset to read it again
// from the start.
type SliceSites struct {
	Sites []Site
	next  int
}

func (ss *SliceSites) ReadSites(dst []Site) (int, error) {
	n := copy(dst, ss.Sites[ss.next:])
	ss.next += n
	if ss.next >= len(ss.Sites) {
		return n, io.EOF
	}
	return n, nil
}

func (ss *SliceSites) Reset() { ss.next = 0 }

// PairedSites reads sites from two parallel arrays, typically loaded
// from separate numerator and denominator .npy files.
type PairedSites struct {
	Num  []float64
	Den  []float64
	next int
}

// NewPairedSites returns a PairedSites reader, or an error if the
// arrays differ in length.
func NewPairedSites(num, den []float64) (*PairedSites, error) {
	if len(num) != len(den) {
		return nil, fmt.Errorf("numerator length %d != denominator length %d", len(num), len(den))
	}
	return &PairedSites{Num: num, Den: den}, nil
}

func (ps *PairedSites) Len() int { return len(ps.Num) }

func (ps *PairedSites) ReadSites(dst []Site) (int, error) {
	n := 0
	for ; n < len(dst) && ps.next < len(ps.Num); n, ps.next = n+1, ps.next+1 {
		dst[n] = Site{Num: ps.Num[ps.next], Den: ps.Den[ps.next]}
	}
	if ps.next >= len(ps.Num) {
		return n, io.EOF
	}
	return n, nil
}

func (ps *PairedSites) Reset() { ps.next = 0 }

// Compress returns a new PairedSites containing only the sites where
// mask is true, preserving order.
func (ps *PairedSites) Compress(mask []bool) (*PairedSites, error) {
	if len(mask) != len(ps.Num) {
		return nil, fmt.Errorf("mask length %d != number of sites %d", len(mask), len(ps.Num))
	}
	out := &PairedSites{}
	for i, keep := range mask {
		if keep {
			out.Num = append(out.Num, ps.Num[i])
			out.Den = append(out.Den, ps.Den[i])
		}
	}
	return out, nil
}

// TSVSites reads whitespace-separated "numerator denominator" lines
// one at a time, so arbitrarily large inputs are never held in
// memory. Blank lines and lines starting with "#" are skipped.
type TSVSites struct {
	scanner *bufio.Scanner
	lineNum int
}

func NewTSVSites(r io.Reader) *TSVSites {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	return &TSVSites{scanner: scanner}
}

func (ts *TSVSites) ReadSites(dst []Site) (int, error) {
	n := 0
	for n < len(dst) {
		if !ts.scanner.Scan() {
			if err := ts.scanner.Err(); err != nil {
				return n, err
			}
			return n, io.EOF
		}
		ts.lineNum++
		line := strings.TrimSpace(ts.scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return n, fmt.Errorf("line %d: expected 2 fields, found %d: %q", ts.lineNum, len(fields), line)
		}
		num, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return n, fmt.Errorf("line %d: numerator: %w", ts.lineNum, err)
		}
		den, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return n, fmt.Errorf("line %d: denominator: %w", ts.lineNum, err)
		}
		dst[n] = Site{Num: num, Den: den}
		n++
	}
	return n, nil
}
