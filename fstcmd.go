// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type fstcmd struct {
	siteInputs
	confidence float64
}

func (cmd *fstcmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pprof := flags.String("pprof", "", "serve Go profile data at http://`[addr]:port`")
	outputFilename := flags.String("o", "-", "output JSON `file`")
	blocksFilename := flags.String("blocks-output", "", "write per-block CSV to `file`")
	blocksNumpyFilename := flags.String("blocks-npy", "", "write per-block ratios as (blocks, 2) .npy `file`: raw block ratio, leave-one-out ratio")
	flags.Float64Var(&cmd.confidence, "confidence", 0.95, "confidence `level` for the reported interval")
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
	err = cmd.siteInputs.Check()
	if err != nil {
		return 2
	}

	if *pprof != "" {
		go func() {
			log.Println(http.ListenAndServe(*pprof, nil))
		}()
	}

	blocks, pos, err := cmd.partition(stdin)
	if err != nil {
		return 1
	}
	log.Infof("partitioned %d sites into %d blocks of %d", sitesIn(blocks), len(blocks), cmd.BlockSize)

	est, err := EstimateBlocks(blocks)
	if err != nil {
		return 1
	}
	log.WithFields(log.Fields{
		"ratio":  est.Ratio,
		"stderr": est.StdErr,
		"blocks": est.Blocks,
		"sites":  est.Sites,
	}).Info("estimate done")
	if nan := countNaN(est.BlockRatios); nan > 0 {
		log.Warnf("%d of %d blocks have zero denominator (ratio is NaN)", nan, len(blocks))
	}

	var positions []BlockPosition
	if pos != nil {
		positions, err = BlockPositions(blocks, pos)
		if err != nil {
			return 1
		}
	}

	if *blocksFilename != "" {
		err = writeBlocksCSV(*blocksFilename, blocks, est, positions)
		if err != nil {
			return 1
		}
	}
	if *blocksNumpyFilename != "" {
		data := make([]float64, 0, len(blocks)*2)
		for k := range blocks {
			data = append(data, est.BlockRatios[k], est.LeaveOneOut[k])
		}
		err = writeNumpyFloat64(*blocksNumpyFilename, data, len(blocks), 2)
		if err != nil {
			return 1
		}
	}

	output, err := createOutput(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	err = cmd.writeJSON(bufw, est, positions)
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

// partition reads the configured inputs, applies the ascertainment
// filter if any, and returns the block sums along with per-site
// positions (nil if -pos was not given).
func (cmd *fstcmd) partition(stdin io.Reader) ([]BlockSum, []int64, error) {
	pos, err := cmd.loadPositions()
	if err != nil {
		return nil, nil, err
	}
	if cmd.TSVFilename != "" {
		rdr, closer, err := cmd.openTSV(stdin)
		if err != nil {
			return nil, nil, err
		}
		defer closer()
		blocks, err := Partition(rdr, cmd.BlockSize)
		if err != nil {
			return nil, nil, err
		}
		if pos != nil && len(pos) != sitesIn(blocks) {
			return nil, nil, fmt.Errorf("%s has %d positions but input has %d sites", cmd.PosFilename, len(pos), sitesIn(blocks))
		}
		return blocks, pos, closer()
	}

	sites, err := cmd.loadPaired()
	if err != nil {
		return nil, nil, err
	}
	if pos != nil && len(pos) != sites.Len() {
		return nil, nil, fmt.Errorf("%s has %d positions but input has %d sites", cmd.PosFilename, len(pos), sites.Len())
	}
	if cmd.filterActive {
		ac1, ac2, err := cmd.loadAlleleCounts()
		if err != nil {
			return nil, nil, err
		}
		if len(ac1) != sites.Len() {
			return nil, nil, fmt.Errorf("allele counts have %d sites but input has %d", len(ac1), sites.Len())
		}
		mask, err := AscertainmentMask(ac1, ac2, cmd.scheme)
		if err != nil {
			return nil, nil, err
		}
		log.Infof("retaining %d of %d sites segregating in %s population", countTrue(mask), len(mask), cmd.scheme)
		sites, pos, err = applyMask(sites, pos, mask)
		if err != nil {
			return nil, nil, err
		}
	}
	blocks, err := Partition(sites, cmd.BlockSize)
	return blocks, pos, err
}

type fstOutput struct {
	Ratio       jsonFloat
	StdErr      jsonFloat
	ZScore      jsonFloat
	Confidence  float64
	CILow       jsonFloat
	CIHigh      jsonFloat
	Blocks      int
	Sites       int
	BlockSize   int
	Scheme      string `json:",omitempty"`
	BlockRatios []jsonFloat
	LeaveOneOut []jsonFloat
	Positions   []blockPositionOutput `json:",omitempty"`
}

type blockPositionOutput struct {
	Start  int64
	End    int64
	Centre float64
}

func (cmd *fstcmd) writeJSON(w io.Writer, est *Estimate, positions []BlockPosition) error {
	lo, hi, err := est.ConfidenceInterval(cmd.confidence)
	if err != nil {
		return err
	}
	out := fstOutput{
		Ratio:       jsonFloat(est.Ratio),
		StdErr:      jsonFloat(est.StdErr),
		ZScore:      jsonFloat(est.ZScore()),
		Confidence:  cmd.confidence,
		CILow:       jsonFloat(lo),
		CIHigh:      jsonFloat(hi),
		Blocks:      est.Blocks,
		Sites:       est.Sites,
		BlockSize:   cmd.BlockSize,
		BlockRatios: jsonFloats(est.BlockRatios),
		LeaveOneOut: jsonFloats(est.LeaveOneOut),
	}
	if cmd.filterActive {
		out.Scheme = cmd.scheme.String()
	}
	for _, p := range positions {
		out.Positions = append(out.Positions, blockPositionOutput{Start: p.Start, End: p.End, Centre: p.Centre})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonFloat encodes NaN and ±Inf as null, which encoding/json
// otherwise refuses to marshal.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'g', -1, 64)), nil
}

func jsonFloats(in []float64) []jsonFloat {
	out := make([]jsonFloat, len(in))
	for i, f := range in {
		out[i] = jsonFloat(f)
	}
	return out
}

func writeBlocksCSV(fnm string, blocks []BlockSum, est *Estimate, positions []BlockPosition) error {
	f, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer f.Close()
	log.Infof("writing per-block data to %s", fnm)
	bufw := bufio.NewWriter(f)
	header := "Index,FirstSite,EndSite,Sites,Num,Den,BlockRatio,LeaveOneOut"
	if positions != nil {
		header += ",StartPos,EndPos,Centre"
	}
	_, err = fmt.Fprintln(bufw, header)
	if err != nil {
		return err
	}
	for k, bs := range blocks {
		_, err = fmt.Fprintf(bufw, "%d,%d,%d,%d,%g,%g,%g,%g", bs.Index, bs.Start, bs.End, bs.Sites(), bs.Num, bs.Den, est.BlockRatios[k], est.LeaveOneOut[k])
		if err != nil {
			return fmt.Errorf("write %s: %w", fnm, err)
		}
		if positions != nil {
			_, err = fmt.Fprintf(bufw, ",%d,%d,%g", positions[k].Start, positions[k].End, positions[k].Centre)
			if err != nil {
				return fmt.Errorf("write %s: %w", fnm, err)
			}
		}
		_, err = fmt.Fprintln(bufw)
		if err != nil {
			return fmt.Errorf("write %s: %w", fnm, err)
		}
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return f.Close()
}

func sitesIn(blocks []BlockSum) int {
	if len(blocks) == 0 {
		return 0
	}
	return blocks[len(blocks)-1].End
}

func countNaN(vals []float64) int {
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
