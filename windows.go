// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"fmt"
	"sort"
)

// BlockPosition places one block on the chromosome, for plotting a
// statistic along the genome.
type BlockPosition struct {
	Index  int
	Start  int64 // position of first site in block
	End    int64 // position of last site in block
	Centre float64
	Ratio  float64
}

// BlockCentres returns (pos[first]+pos[last])/2 for each block of
// blockSize consecutive sites, using the same partition as
// BlockScanner. pos must be sorted.
func BlockCentres(pos []int64, blockSize int) ([]float64, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("invalid block size %d", blockSize)
	}
	if !sort.SliceIsSorted(pos, func(i, j int) bool { return pos[i] < pos[j] }) {
		return nil, fmt.Errorf("positions are not sorted")
	}
	centres := make([]float64, 0, BlockCount(len(pos), blockSize))
	for start := 0; start < len(pos); start += blockSize {
		end := start + blockSize
		if end > len(pos) {
			end = len(pos)
		}
		centres = append(centres, float64(pos[start]+pos[end-1])/2)
	}
	return centres, nil
}

// BlockPositions pairs each block's raw ratio with its genomic extent.
// pos must have one entry per site that went into blocks.
func BlockPositions(blocks []BlockSum, pos []int64) ([]BlockPosition, error) {
	out := make([]BlockPosition, len(blocks))
	for i, bs := range blocks {
		if bs.Start < 0 || bs.End > len(pos) || bs.Start >= bs.End {
			return nil, fmt.Errorf("block %d sites [%d,%d) out of range of %d positions", bs.Index, bs.Start, bs.End, len(pos))
		}
		first, last := pos[bs.Start], pos[bs.End-1]
		out[i] = BlockPosition{
			Index:  bs.Index,
			Start:  first,
			End:    last,
			Centre: float64(first+last) / 2,
			Ratio:  bs.Ratio(),
		}
	}
	return out, nil
}
