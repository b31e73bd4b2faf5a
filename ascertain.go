// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"fmt"
	"strings"
)

// Scheme selects which population(s) a site must be segregating in
// to be retained.
type Scheme int

const (
	First Scheme = iota
	Second
	Either
	Both
)

var Schemes = []Scheme{First, Second, Either, Both}

var schemeNames = map[Scheme]string{
	First:  "first",
	Second: "second",
	Either: "either",
	Both:   "both",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown ascertainment scheme %q (want first, second, either, or both)", name)
}

// AlleleCounts holds per-site allele counts for one population:
// AlleleCounts[site][allele].
type AlleleCounts [][]int64

// NewAlleleCounts reshapes a row-major sites×alleles array.
func NewAlleleCounts(data []int64, alleles int) (AlleleCounts, error) {
	if alleles < 1 || len(data)%alleles != 0 {
		return nil, fmt.Errorf("cannot reshape %d values into rows of %d alleles", len(data), alleles)
	}
	ac := make(AlleleCounts, len(data)/alleles)
	for i := range ac {
		ac[i] = data[i*alleles : (i+1)*alleles]
	}
	return ac, nil
}

// IsSegregating returns a mask that is true at sites where more than
// one allele has a nonzero count.
func (ac AlleleCounts) IsSegregating() []bool {
	seg := make([]bool, len(ac))
	for i, row := range ac {
		present := 0
		for _, n := range row {
			if n > 0 {
				present++
			}
		}
		seg[i] = present > 1
	}
	return seg
}

// SegregatingMask combines per-population segregating flags
// according to scheme.
func SegregatingMask(seg1, seg2 []bool, scheme Scheme) ([]bool, error) {
	if len(seg1) != len(seg2) {
		return nil, fmt.Errorf("population 1 has %d sites, population 2 has %d", len(seg1), len(seg2))
	}
	if _, ok := schemeNames[scheme]; !ok {
		return nil, fmt.Errorf("unknown ascertainment scheme %v", scheme)
	}
	mask := make([]bool, len(seg1))
	for i := range mask {
		switch scheme {
		case First:
			mask[i] = seg1[i]
		case Second:
			mask[i] = seg2[i]
		case Either:
			mask[i] = seg1[i] || seg2[i]
		case Both:
			mask[i] = seg1[i] && seg2[i]
		}
	}
	return mask, nil
}

// AscertainmentMask returns the sites retained by scheme, given allele
// counts for two populations over the same sites.
func AscertainmentMask(ac1, ac2 AlleleCounts, scheme Scheme) ([]bool, error) {
	return SegregatingMask(ac1.IsSegregating(), ac2.IsSegregating(), scheme)
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
