package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
//
// Used to derive stable artifact filenames from method identifiers. The
// hash is deterministic across processes and platforms.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
