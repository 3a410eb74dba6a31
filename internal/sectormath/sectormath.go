// Package sectormath holds the small integer helpers shared by the
// sector-addressed packages.
package sectormath

// DivRoundUp returns n/d rounded towards positive infinity.
// d must be positive.
func DivRoundUp(n, d int64) int64 {
	return (n + d - 1) / d
}

// DivRoundDown returns n/d rounded towards zero for non-negative n.
func DivRoundDown(n, d int64) int64 {
	return n / d
}

// SectorsForBytes returns the number of whole sectors needed to hold n bytes.
func SectorsForBytes(n, sectorSize int64) int64 {
	return DivRoundUp(n, sectorSize)
}
