// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/check.v1"
)

type compareSuite struct {
	tmpdir string
}

var _ = check.Suite(&compareSuite{})

func (s *compareSuite) SetUpTest(c *check.C) {
	s.tmpdir = c.MkDir()
	num := make([]float64, 40)
	den := make([]float64, 40)
	ac1 := make([]int32, 80)
	ac2 := make([]int32, 80)
	for i := range num {
		num[i] = float64(i%5) + 1
		den[i] = 10
		// population 1 segregating at even sites, population 2
		// at multiples of 3
		if i%2 == 0 {
			ac1[i*2], ac1[i*2+1] = 4, 6
		} else {
			ac1[i*2] = 10
		}
		if i%3 == 0 {
			ac2[i*2], ac2[i*2+1] = 7, 3
		} else {
			ac2[i*2+1] = 10
		}
	}
	c.Assert(writeNumpyFloat64(s.tmpdir+"/num.npy", num, 40, 1), check.IsNil)
	c.Assert(writeNumpyFloat64(s.tmpdir+"/den.npy", den, 40, 1), check.IsNil)
	writeTestNumpyInt32(c, s.tmpdir+"/ac1.npy", ac1, 40, 2)
	writeTestNumpyInt32(c, s.tmpdir+"/ac2.npy", ac2, 40, 2)
}

func (s *compareSuite) TestCompareSchemes(c *check.C) {
	var stdout bytes.Buffer
	exited := (&compareSchemes{}).RunCommand("compare-schemes", []string{
		"-num", s.tmpdir + "/num.npy",
		"-den", s.tmpdir + "/den.npy",
		"-ac1", s.tmpdir + "/ac1.npy",
		"-ac2", s.tmpdir + "/ac2.npy",
		"-block-size", "3",
		"-threads", "2",
	}, &bytes.Buffer{}, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Logf("%s", stdout.String())
	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	c.Assert(lines, check.HasLen, 4)
	// 20 even sites, 14 multiples of 3, 27 either, 7 both
	c.Check(lines[0], check.Matches, `\d\.\d{4} \+/- \d\.\d{4} \(using 20 SNPs segregating in first population\)`)
	c.Check(lines[1], check.Matches, `.* \(using 14 SNPs segregating in second population\)`)
	c.Check(lines[2], check.Matches, `.* \(using 27 SNPs segregating in either population\)`)
	c.Check(lines[3], check.Matches, `.* \(using 7 SNPs segregating in both population\)`)
}

func (s *compareSuite) TestEstimateSchemesMatchesSerial(c *check.C) {
	num, _, err := readNumpyFloat64(s.tmpdir + "/num.npy")
	c.Assert(err, check.IsNil)
	den, _, err := readNumpyFloat64(s.tmpdir + "/den.npy")
	c.Assert(err, check.IsNil)
	sites, err := NewPairedSites(num, den)
	c.Assert(err, check.IsNil)
	ac1, err := readAlleleCounts(s.tmpdir + "/ac1.npy")
	c.Assert(err, check.IsNil)
	ac2, err := readAlleleCounts(s.tmpdir + "/ac2.npy")
	c.Assert(err, check.IsNil)

	results, err := estimateSchemes(sites, ac1.IsSegregating(), ac2.IsSegregating(), 3, 4)
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, len(Schemes))
	for i, scheme := range Schemes {
		c.Check(results[i].scheme, check.Equals, scheme)
		mask, err := AscertainmentMask(ac1, ac2, scheme)
		c.Assert(err, check.IsNil)
		sub, err := sites.Compress(mask)
		c.Assert(err, check.IsNil)
		want, err := Jackknife(sub, 3)
		c.Assert(err, check.IsNil)
		c.Check(results[i].est, check.DeepEquals, want)
		c.Check(results[i].sites, check.Equals, countTrue(mask))
	}
}

func (s *compareSuite) TestInsufficientBlocks(c *check.C) {
	var stderr bytes.Buffer
	exited := (&compareSchemes{}).RunCommand("compare-schemes", []string{
		"-num", s.tmpdir + "/num.npy",
		"-den", s.tmpdir + "/den.npy",
		"-ac1", s.tmpdir + "/ac1.npy",
		"-ac2", s.tmpdir + "/ac2.npy",
		"-block-size", "10",
	}, &bytes.Buffer{}, &bytes.Buffer{}, &stderr)
	c.Check(exited, check.Equals, 1)
	c.Check(stderr.String(), check.Matches, `scheme both: insufficient blocks.*\n`)
}

func (s *compareSuite) TestAscertainCommand(c *check.C) {
	var stdout bytes.Buffer
	exited := (&ascertaincmd{}).RunCommand("ascertain", []string{
		"-ac1", s.tmpdir + "/ac1.npy",
		"-ac2", s.tmpdir + "/ac2.npy",
		"-scheme", "either",
		"-o", s.tmpdir + "/mask.npy",
	}, &bytes.Buffer{}, &stdout, os.Stderr)
	c.Assert(exited, check.Equals, 0)
	c.Check(stdout.String(), check.Equals, "27\t40\teither\n")

	mask, shape, err := readNumpyInt64(s.tmpdir + "/mask.npy")
	c.Assert(err, check.IsNil)
	c.Check(shape, check.DeepEquals, []int{40, 1})
	for i, m := range mask {
		want := int64(0)
		if i%2 == 0 || i%3 == 0 {
			want = 1
		}
		c.Check(m, check.Equals, want, check.Commentf("site %d", i))
	}

	exited = (&ascertaincmd{}).RunCommand("ascertain", []string{"-ac1", s.tmpdir + "/ac1.npy"}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 2)
	exited = (&ascertaincmd{}).RunCommand("ascertain", []string{"-ac1", s.tmpdir + "/ac1.npy", "-ac2", s.tmpdir + "/ac2.npy", "-scheme", "neither"}, &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{})
	c.Check(exited, check.Equals, 1)
}
