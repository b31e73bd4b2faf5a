// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInsufficientData   = errors.New("insufficient data: no sites")
	ErrInsufficientBlocks = errors.New("insufficient blocks: jackknife needs at least 2 blocks")
)

// Estimate is a genome-wide ratio statistic with a delete-one-block
// jackknife standard error.
//
// LeaveOneOut[k] is the ratio recomputed with block k excluded.
// BlockRatios[k] is the ratio within block k alone, which is what a
// genome plot of localized variation wants. Either may contain NaN
// where the relevant denominator is zero.
type Estimate struct {
	Ratio       float64
	StdErr      float64
	Blocks      int
	Sites       int
	Num         float64
	Den         float64
	LeaveOneOut []float64
	BlockRatios []float64
}

// Jackknife partitions r into blocks of blockSize sites and returns
// the block-jackknife estimate.
func Jackknife(r SiteReader, blockSize int) (*Estimate, error) {
	if blockSize < 1 {
		return nil, fmt.Errorf("invalid block size %d", blockSize)
	}
	blocks, err := Partition(r, blockSize)
	if err != nil {
		return nil, err
	}
	return EstimateBlocks(blocks)
}

// EstimateBlocks computes the global ratio from the summed block
// totals and its jackknife standard error
//
//	SE = sqrt((B-1)/B * Σ_k (θ_k - mean(θ))²)
//
// where θ_k is the leave-one-out ratio for block k. A NaN θ_k is not
// dropped: it makes StdErr NaN.
func EstimateBlocks(blocks []BlockSum) (*Estimate, error) {
	if len(blocks) == 0 {
		return nil, ErrInsufficientData
	}
	est := &Estimate{Blocks: len(blocks)}
	for _, bs := range blocks {
		est.Num += bs.Num
		est.Den += bs.Den
		est.Sites += bs.Sites()
	}
	if est.Sites == 0 {
		return nil, ErrInsufficientData
	}
	if len(blocks) < 2 {
		return nil, fmt.Errorf("%w (have %d block of %d sites)", ErrInsufficientBlocks, len(blocks), est.Sites)
	}
	est.Ratio = Ratio(est.Num, est.Den)

	est.LeaveOneOut = make([]float64, len(blocks))
	est.BlockRatios = make([]float64, len(blocks))
	for k, bs := range blocks {
		est.LeaveOneOut[k] = Ratio(est.Num-bs.Num, est.Den-bs.Den)
		est.BlockRatios[k] = bs.Ratio()
	}

	b := float64(len(blocks))
	mean := stat.Mean(est.LeaveOneOut, nil)
	var ss float64
	for _, v := range est.LeaveOneOut {
		ss += (v - mean) * (v - mean)
	}
	est.StdErr = math.Sqrt((b - 1) / b * ss)
	return est, nil
}

// ZScore returns Ratio/StdErr.
func (est *Estimate) ZScore() float64 {
	return Ratio(est.Ratio, est.StdErr)
}

// ConfidenceInterval returns a two-sided normal-approximation interval
// around Ratio at the given confidence level (e.g. 0.95).
func (est *Estimate) ConfidenceInterval(level float64) (lo, hi float64, err error) {
	if !(level > 0 && level < 1) {
		return 0, 0, fmt.Errorf("confidence level %v out of range (0, 1)", level)
	}
	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	return est.Ratio - z*est.StdErr, est.Ratio + z*est.StdErr, nil
}
