// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"errors"
	"flag"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// siteInputs holds the input-file flags shared by the fst and
// compare-schemes commands.
type siteInputs struct {
	TSVFilename  string
	NumFilename  string
	DenFilename  string
	PosFilename  string
	AC1Filename  string
	AC2Filename  string
	SchemeName   string
	BlockSize    int
	scheme       Scheme
	filterActive bool
}

func (in *siteInputs) Flags(flags *flag.FlagSet) {
	flags.StringVar(&in.TSVFilename, "i", "", "two-column numerator/denominator text `file` (- for stdin, .gz ok)")
	flags.StringVar(&in.NumFilename, "num", "", "per-site numerator .npy `file`")
	flags.StringVar(&in.DenFilename, "den", "", "per-site denominator .npy `file`")
	flags.StringVar(&in.PosFilename, "pos", "", "per-site genomic position .npy `file` (optional, for block coordinates)")
	flags.StringVar(&in.AC1Filename, "ac1", "", "population 1 allele counts .npy `file`, shape (sites, alleles)")
	flags.StringVar(&in.AC2Filename, "ac2", "", "population 2 allele counts .npy `file`, shape (sites, alleles)")
	flags.StringVar(&in.SchemeName, "scheme", "", "retain sites segregating in `first|second|either|both` population(s) (requires -ac1 and -ac2)")
	flags.IntVar(&in.BlockSize, "block-size", 0, "number of consecutive sites per jackknife block (required)")
}

// Check validates flag combinations after parsing.
func (in *siteInputs) Check() error {
	if in.BlockSize < 1 {
		return errors.New("must specify -block-size greater than 0")
	}
	if (in.NumFilename == "") != (in.DenFilename == "") {
		return errors.New("must provide both -num and -den, or neither")
	}
	if (in.TSVFilename == "") == (in.NumFilename == "") {
		return errors.New("must provide exactly one of -i or -num/-den")
	}
	if (in.AC1Filename == "") != (in.AC2Filename == "") {
		return errors.New("must provide both -ac1 and -ac2, or neither")
	}
	if in.AC1Filename != "" {
		if in.SchemeName == "" {
			return errors.New("-ac1 and -ac2 require -scheme")
		}
		if in.TSVFilename != "" {
			return errors.New("-scheme filtering requires -num/-den input, not -i")
		}
		scheme, err := ParseScheme(in.SchemeName)
		if err != nil {
			return err
		}
		in.scheme = scheme
		in.filterActive = true
	} else if in.SchemeName != "" {
		return errors.New("-scheme requires -ac1 and -ac2")
	}
	return nil
}

// loadPaired reads the -num/-den arrays.
func (in *siteInputs) loadPaired() (*PairedSites, error) {
	log.Infof("reading %s", in.NumFilename)
	num, _, err := readNumpyFloat64(in.NumFilename)
	if err != nil {
		return nil, err
	}
	log.Infof("reading %s", in.DenFilename)
	den, _, err := readNumpyFloat64(in.DenFilename)
	if err != nil {
		return nil, err
	}
	return NewPairedSites(num, den)
}

// loadPositions reads the -pos array, or returns nil if -pos was not
// given.
func (in *siteInputs) loadPositions() ([]int64, error) {
	if in.PosFilename == "" {
		return nil, nil
	}
	log.Infof("reading %s", in.PosFilename)
	pos, _, err := readNumpyInt64(in.PosFilename)
	return pos, err
}

// loadAlleleCounts reads the -ac1/-ac2 arrays.
func (in *siteInputs) loadAlleleCounts() (ac1, ac2 AlleleCounts, err error) {
	log.Infof("reading %s", in.AC1Filename)
	ac1, err = readAlleleCounts(in.AC1Filename)
	if err != nil {
		return
	}
	log.Infof("reading %s", in.AC2Filename)
	ac2, err = readAlleleCounts(in.AC2Filename)
	return
}

// openTSV returns a streaming SiteReader for the -i file and a func
// that closes it.
func (in *siteInputs) openTSV(stdin io.Reader) (SiteReader, func() error, error) {
	if in.TSVFilename == "-" {
		return NewTSVSites(stdin), func() error { return nil }, nil
	}
	f, err := zopen(in.TSVFilename)
	if err != nil {
		return nil, nil, err
	}
	return NewTSVSites(f), f.Close, nil
}

// applyMask drops sites (and their positions, if any) where mask is
// false.
func applyMask(sites *PairedSites, pos []int64, mask []bool) (*PairedSites, []int64, error) {
	sites, err := sites.Compress(mask)
	if err != nil {
		return nil, nil, err
	}
	if pos == nil {
		return sites, nil, nil
	}
	if len(pos) != len(mask) {
		return nil, nil, fmt.Errorf("positions length %d != mask length %d", len(pos), len(mask))
	}
	kept := make([]int64, 0, sites.Len())
	for i, keep := range mask {
		if keep {
			kept = append(kept, pos[i])
		}
	}
	return sites, kept, nil
}
