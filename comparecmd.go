// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"

	log "github.com/sirupsen/logrus"
)

// compareSchemes runs the jackknife estimator once per ascertainment
// scheme over the same input.
type compareSchemes struct {
	siteInputs
}

func (cmd *compareSchemes) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	threads := flags.Int("threads", runtime.NumCPU(), "maximum number of schemes to estimate concurrently")
	cmd.siteInputs.Flags(flags)
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	} else if flags.NArg() > 0 {
		err = fmt.Errorf("errant command line arguments after parsed flags: %v", flags.Args())
		return 2
	}
	if cmd.SchemeName != "" {
		err = errors.New("-scheme is not used by compare-schemes (all schemes are compared)")
		return 2
	}
	if cmd.TSVFilename != "" || cmd.AC1Filename == "" {
		err = errors.New("compare-schemes requires -num, -den, -ac1, and -ac2")
		return 2
	}
	cmd.SchemeName = First.String()
	err = cmd.siteInputs.Check()
	if err != nil {
		return 2
	}
	if *threads < 1 {
		*threads = 1
	}

	sites, err := cmd.loadPaired()
	if err != nil {
		return 1
	}
	ac1, ac2, err := cmd.loadAlleleCounts()
	if err != nil {
		return 1
	}
	if len(ac1) != sites.Len() {
		err = fmt.Errorf("allele counts have %d sites but input has %d", len(ac1), sites.Len())
		return 1
	}
	seg1, seg2 := ac1.IsSegregating(), ac2.IsSegregating()
	if len(seg1) != len(seg2) {
		err = fmt.Errorf("population 1 has %d sites, population 2 has %d", len(seg1), len(seg2))
		return 1
	}

	results, err := estimateSchemes(sites, seg1, seg2, cmd.BlockSize, *threads)
	if err != nil {
		return 1
	}
	for _, res := range results {
		_, err = fmt.Fprintf(stdout, "%.04f +/- %.04f (using %d SNPs segregating in %s population)\n", res.est.Ratio, res.est.StdErr, res.sites, res.scheme)
		if err != nil {
			return 1
		}
	}
	return 0
}

type schemeResult struct {
	scheme Scheme
	sites  int
	est    *Estimate
}

// estimateSchemes computes an Estimate for each ascertainment scheme,
// running up to threads estimates at a time. Results are returned in
// the order of Schemes.
func estimateSchemes(sites *PairedSites, seg1, seg2 []bool, blockSize, threads int) ([]schemeResult, error) {
	results := make([]schemeResult, len(Schemes))
	thr := throttle{Max: threads}
	for i, scheme := range Schemes {
		i, scheme := i, scheme
		thr.Go(func() error {
			mask, err := SegregatingMask(seg1, seg2, scheme)
			if err != nil {
				return err
			}
			subset, err := sites.Compress(mask)
			if err != nil {
				return err
			}
			est, err := Jackknife(subset, blockSize)
			if err != nil {
				return fmt.Errorf("scheme %s: %w", scheme, err)
			}
			log.WithFields(log.Fields{
				"scheme": scheme.String(),
				"sites":  subset.Len(),
				"ratio":  est.Ratio,
				"stderr": est.StdErr,
			}).Info("estimate done")
			results[i] = schemeResult{scheme: scheme, sites: subset.Len(), est: est}
			return nil
		})
	}
	err := thr.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}
