package generator

import "unicode/utf16"

// Next is a stateless linear-congruential draw in [1, bound]. The same
// (seed, callIndex, bound) always yields the same value. Not suitable for
// anything security related.
func Next(seed, callIndex int64, bound int) int {
	if bound < 1 {
		bound = 1
	}
	raw := seed*(callIndex+1)*9301 + 49297
	return int(raw%233280)%bound + 1
}

// SeedFromDate hashes a YYYY-MM-DD string with hash*31+c over UTF-16 code
// units, wrapping as int32 on every step, and returns the absolute value.
func SeedFromDate(date string) int64 {
	var hash int32
	for _, c := range utf16.Encode([]rune(date)) {
		hash = hash*31 + int32(c)
	}
	seed := int64(hash)
	if seed < 0 {
		seed = -seed
	}
	return seed
}
