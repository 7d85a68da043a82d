package utils

import "hash/fnv"

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// SeedFromString derives a deterministic math/rand seed, e.g. from a date.
func SeedFromString(s string) int64 {
	return int64(HashStringToUint64(s) >> 1)
}
