// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kshedden/gonpy"
	log "github.com/sirupsen/logrus"
)

// readNumpyFloat64 loads a numeric .npy file (optionally .npy.gz) and
// returns its values as float64 along with its shape.
func readNumpyFloat64(fnm string) ([]float64, []int, error) {
	f, err := zopen(fnm)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	npy, err := gonpy.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fnm, err)
	}
	if npy.ColumnMajor && len(npy.Shape) > 1 {
		return nil, nil, fmt.Errorf("%s: column-major (fortran order) arrays are not supported", fnm)
	}
	var out []float64
	switch dtype := strings.TrimLeft(npy.Dtype, "<>|="); dtype {
	case "f8":
		out, err = npy.GetFloat64()
	case "f4":
		var v []float32
		v, err = npy.GetFloat32()
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	default:
		var v []int64
		v, err = readNumpyInts(npy, dtype)
		out = make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fnm, err)
	}
	log.WithFields(log.Fields{
		"filename": fnm,
		"dtype":    npy.Dtype,
		"shape":    npy.Shape,
	}).Debugf("read numpy: %s", fnm)
	return out, npy.Shape, nil
}

// readNumpyInt64 loads an integer .npy file (optionally .npy.gz).
func readNumpyInt64(fnm string) ([]int64, []int, error) {
	f, err := zopen(fnm)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	npy, err := gonpy.NewReader(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fnm, err)
	}
	if npy.ColumnMajor && len(npy.Shape) > 1 {
		return nil, nil, fmt.Errorf("%s: column-major (fortran order) arrays are not supported", fnm)
	}
	out, err := readNumpyInts(npy, strings.TrimLeft(npy.Dtype, "<>|="))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fnm, err)
	}
	return out, npy.Shape, nil
}

func readNumpyInts(npy *gonpy.NpyReader, dtype string) ([]int64, error) {
	var out []int64
	widen := func(n int, get func(int) int64) {
		out = make([]int64, n)
		for i := range out {
			out[i] = get(i)
		}
	}
	switch dtype {
	case "i8":
		return npy.GetInt64()
	case "i4":
		v, err := npy.GetInt32()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	case "i2":
		v, err := npy.GetInt16()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	case "i1":
		v, err := npy.GetInt8()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	case "u4":
		v, err := npy.GetUint32()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	case "u2":
		v, err := npy.GetUint16()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	case "u1":
		v, err := npy.GetUint8()
		if err != nil {
			return nil, err
		}
		widen(len(v), func(i int) int64 { return int64(v[i]) })
	default:
		return nil, fmt.Errorf("unsupported numpy dtype %q", npy.Dtype)
	}
	return out, nil
}

// readAlleleCounts loads a 2-D sites×alleles allele count array.
func readAlleleCounts(fnm string) (AlleleCounts, error) {
	data, shape, err := readNumpyInt64(fnm)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%s: expected 2-D allele count array, got shape %v", fnm, shape)
	}
	return NewAlleleCounts(data, shape[1])
}

func writeNumpyFloat64(fnm string, out []float64, rows, cols int) error {
	output, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriterSize(output, 1<<20)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"filename": fnm,
		"rows":     rows,
		"cols":     cols,
		"bytes":    rows * cols * 8,
	}).Infof("writing numpy: %s", fnm)
	npw.Shape = []int{rows, cols}
	err = npw.WriteFloat64(out)
	if err != nil {
		return err
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return output.Close()
}

func writeNumpyInt8(fnm string, out []int8, rows, cols int) error {
	output, err := os.Create(fnm)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriterSize(output, 1<<20)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"filename": fnm,
		"rows":     rows,
		"cols":     cols,
		"bytes":    rows * cols,
	}).Infof("writing numpy: %s", fnm)
	npw.Shape = []int{rows, cols}
	err = npw.WriteInt8(out)
	if err != nil {
		return err
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return output.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
