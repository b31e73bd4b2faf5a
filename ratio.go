// Copyright (C) The Lightning Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package blockfst

import "math"

// Ratio returns num/den. If den is zero the ratio is undefined and
// Ratio returns NaN (never ±Inf or 0), so callers can filter with
// math.IsNaN.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
