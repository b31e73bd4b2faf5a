// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"math/rand"

	"gopkg.in/check.v1"
)

type ascertainSuite struct{}

var _ = check.Suite(&ascertainSuite{})

func (s *ascertainSuite) TestIsSegregating(c *check.C) {
	ac := AlleleCounts{
		{10, 0},
		{0, 10},
		{5, 5},
		{0, 0},
		{1, 0, 1},
		{0, 0, 3},
	}
	c.Check(ac.IsSegregating(), check.DeepEquals, []bool{false, false, true, false, true, false})
}

func (s *ascertainSuite) TestNewAlleleCounts(c *check.C) {
	ac, err := NewAlleleCounts([]int64{1, 2, 3, 4, 5, 6}, 2)
	c.Assert(err, check.IsNil)
	c.Check(ac, check.DeepEquals, AlleleCounts{{1, 2}, {3, 4}, {5, 6}})
	_, err = NewAlleleCounts([]int64{1, 2, 3}, 2)
	c.Check(err, check.NotNil)
	_, err = NewAlleleCounts([]int64{1, 2, 3}, 0)
	c.Check(err, check.NotNil)
}

func (s *ascertainSuite) TestSchemeRelations(c *check.C) {
	seg1 := make([]bool, 1000)
	seg2 := make([]bool, 1000)
	for i := range seg1 {
		seg1[i] = rand.Intn(2) == 0
		seg2[i] = rand.Intn(3) == 0
	}
	masks := map[Scheme][]bool{}
	for _, scheme := range Schemes {
		mask, err := SegregatingMask(seg1, seg2, scheme)
		c.Assert(err, check.IsNil)
		c.Assert(mask, check.HasLen, len(seg1))
		masks[scheme] = mask
	}
	for i := range seg1 {
		first, second, either, both := masks[First][i], masks[Second][i], masks[Either][i], masks[Both][i]
		c.Check(first, check.Equals, seg1[i])
		c.Check(second, check.Equals, seg2[i])
		c.Check(either, check.Equals, first || second)
		c.Check(both, check.Equals, first && second)
		// both ⊆ first ⊆ either, both ⊆ second ⊆ either
		c.Check(!both || first, check.Equals, true)
		c.Check(!first || either, check.Equals, true)
		c.Check(!both || second, check.Equals, true)
		c.Check(!second || either, check.Equals, true)
	}
	c.Check(countTrue(masks[Both]) <= countTrue(masks[First]), check.Equals, true)
	c.Check(countTrue(masks[First]) <= countTrue(masks[Either]), check.Equals, true)
}

func (s *ascertainSuite) TestAscertainmentMask(c *check.C) {
	ac1 := AlleleCounts{{5, 5}, {10, 0}, {3, 7}, {0, 10}}
	ac2 := AlleleCounts{{10, 0}, {4, 6}, {2, 8}, {0, 10}}
	for scheme, want := range map[Scheme][]bool{
		First:  {true, false, true, false},
		Second: {false, true, true, false},
		Either: {true, true, true, false},
		Both:   {false, false, true, false},
	} {
		mask, err := AscertainmentMask(ac1, ac2, scheme)
		c.Check(err, check.IsNil)
		c.Check(mask, check.DeepEquals, want, check.Commentf("scheme %s", scheme))
	}
	_, err := AscertainmentMask(ac1, ac2[:3], Both)
	c.Check(err, check.ErrorMatches, `population 1 has 4 sites, population 2 has 3`)
	_, err = AscertainmentMask(ac1, ac2, Scheme(9))
	c.Check(err, check.ErrorMatches, `unknown ascertainment scheme Scheme\(9\)`)
}

func (s *ascertainSuite) TestParseScheme(c *check.C) {
	for _, scheme := range Schemes {
		parsed, err := ParseScheme(scheme.String())
		c.Check(err, check.IsNil)
		c.Check(parsed, check.Equals, scheme)
	}
	parsed, err := ParseScheme("Both")
	c.Check(err, check.IsNil)
	c.Check(parsed, check.Equals, Both)
	_, err = ParseScheme("neither")
	c.Check(err, check.ErrorMatches, `unknown ascertainment scheme "neither".*`)
}

func (s *ascertainSuite) TestFilterChangesBlocks(c *check.C) {
	// Filtering happens before partitioning, so a stricter scheme
	// yields fewer blocks from the same sites.
	ps, err := NewPairedSites([]float64{1, 2, 3, 4, 5, 6}, []float64{10, 10, 10, 10, 10, 10})
	c.Assert(err, check.IsNil)
	seg1 := []bool{true, true, true, true, false, false}
	seg2 := []bool{true, false, true, false, true, true}
	for scheme, wantBlocks := range map[Scheme]int{First: 2, Second: 2, Either: 3, Both: 1} {
		mask, err := SegregatingMask(seg1, seg2, scheme)
		c.Assert(err, check.IsNil)
		sub, err := ps.Compress(mask)
		c.Assert(err, check.IsNil)
		blocks, err := Partition(sub, 2)
		c.Assert(err, check.IsNil)
		c.Check(blocks, check.HasLen, wantBlocks, check.Commentf("scheme %s", scheme))
	}
}
