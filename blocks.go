// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"errors"
	"fmt"
	"io"
)

// BlockSum is the total numerator and denominator of one block of
// consecutive sites [Start, End).
type BlockSum struct {
	Index int
	Start int
	End   int
	Num   float64
	Den   float64
}

// Sites returns the number of sites in the block.
func (bs BlockSum) Sites() int { return bs.End - bs.Start }

// Ratio returns Num/Den, or NaN if Den is zero.
func (bs BlockSum) Ratio() float64 { return Ratio(bs.Num, bs.Den) }

// BlockScanner partitions a SiteReader into contiguous blocks of
// blockSize sites and yields one BlockSum per block. Only one block's
// worth of sites is buffered at a time. The last block is shorter
// than blockSize if the number of sites is not a multiple of
// blockSize.
//
//	scanner := NewBlockScanner(r, 10000)
//	for scanner.Scan() {
//		bs := scanner.Block()
//		...
//	}
//	if err := scanner.Err(); err != nil { ... }
type BlockScanner struct {
	r         SiteReader
	blockSize int
	buf       []Site
	block     BlockSum
	nextIndex int
	nextStart int
	eof       bool
	err       error
}

func NewBlockScanner(r SiteReader, blockSize int) *BlockScanner {
	return &BlockScanner{r: r, blockSize: blockSize}
}

// Scan advances to the next block. It returns false when the input is
// exhausted or an error occurs.
func (s *BlockScanner) Scan() bool {
	if s.err != nil || s.eof {
		return false
	}
	if s.blockSize < 1 {
		s.err = fmt.Errorf("invalid block size %d", s.blockSize)
		return false
	}
	if s.buf == nil {
		s.buf = make([]Site, s.blockSize)
	}
	filled := 0
	for filled < s.blockSize && !s.eof {
		n, err := s.r.ReadSites(s.buf[filled:])
		filled += n
		if errors.Is(err, io.EOF) {
			s.eof = true
		} else if err != nil {
			s.err = fmt.Errorf("reading site %d: %w", s.nextStart+filled, err)
			return false
		} else if n == 0 {
			s.err = io.ErrNoProgress
			return false
		}
	}
	if filled == 0 {
		return false
	}
	bs := BlockSum{Index: s.nextIndex, Start: s.nextStart, End: s.nextStart + filled}
	for _, site := range s.buf[:filled] {
		bs.Num += site.Num
		bs.Den += site.Den
	}
	s.block = bs
	s.nextIndex++
	s.nextStart += filled
	return true
}

// Block returns the block most recently produced by Scan.
func (s *BlockScanner) Block() BlockSum { return s.block }

// Err returns the first non-EOF error encountered by Scan.
func (s *BlockScanner) Err() error { return s.err }

// Partition reads all sites from r and returns one BlockSum per block,
// in order. An empty input yields no blocks and no error.
func Partition(r SiteReader, blockSize int) ([]BlockSum, error) {
	var blocks []BlockSum
	scanner := NewBlockScanner(r, blockSize)
	for scanner.Scan() {
		blocks = append(blocks, scanner.Block())
	}
	return blocks, scanner.Err()
}

// BlockCount returns ceil(sites/blockSize).
func BlockCount(sites, blockSize int) int {
	if blockSize < 1 || sites < 1 {
		return 0
	}
	return (sites + blockSize - 1) / blockSize
}
