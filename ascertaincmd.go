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

type ascertaincmd struct{}

func (cmd *ascertaincmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	err := cmd.run(prog, args, stdin, stdout, stderr)
	if err == errUsage {
		return 2
	} else if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage error")

func (cmd *ascertaincmd) run(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	ac1Filename := flags.String("ac1", "", "population 1 allele counts .npy `file`, shape (sites, alleles)")
	ac2Filename := flags.String("ac2", "", "population 2 allele counts .npy `file`, shape (sites, alleles)")
	schemeName := flags.String("scheme", "both", "retain sites segregating in `first|second|either|both` population(s)")
	outputFilename := flags.String("o", "", "write mask (1 = retained) as int8 .npy `file`")
	err := flags.Parse(args)
	if err == flag.ErrHelp {
		return nil
	} else if err != nil {
		return errUsage
	} else if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "errant command line arguments after parsed flags: %v\n", flags.Args())
		return errUsage
	}
	if *ac1Filename == "" || *ac2Filename == "" {
		fmt.Fprintln(stderr, "must provide -ac1 and -ac2")
		return errUsage
	}
	scheme, err := ParseScheme(*schemeName)
	if err != nil {
		return err
	}

	in := siteInputs{AC1Filename: *ac1Filename, AC2Filename: *ac2Filename}
	ac1, ac2, err := in.loadAlleleCounts()
	if err != nil {
		return err
	}
	seg1, seg2 := ac1.IsSegregating(), ac2.IsSegregating()
	mask, err := SegregatingMask(seg1, seg2, scheme)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"sites":      len(mask),
		"seg_first":  countTrue(seg1),
		"seg_second": countTrue(seg2),
	}).Infof("retaining %d sites segregating in %s population", countTrue(mask), scheme)

	if *outputFilename != "" {
		out := make([]int8, len(mask))
		for i, keep := range mask {
			if keep {
				out[i] = 1
			}
		}
		err = writeNumpyInt8(*outputFilename, out, len(out), 1)
		if err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(stdout, "%d\t%d\t%s\n", countTrue(mask), len(mask), scheme)
	return err
}
