// SPDX-License-Identifier: MIT

// Package bitint holds the power-of-two helpers used when sizing capture
// buffers and transform lengths. All functions are O(1) and allocation free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Sizes <= 0
// return 1.
//
// The subtraction keeps exact powers of two unchanged: for 8 the highest set
// bit of 7 is bit 2, so the result is 1<<3 = 8 rather than 16.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
