package testgen

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
)

// Canonical encoding separators. Control characters cannot appear in
// generator names or rendered parameter values coming from a script, so the
// encoding is unambiguous.
const (
	seedSepComponent = "\x00" // between tuple components
	seedSepPair      = "\x1e" // between assignment pairs (RS)
	seedSepNameValue = "\x1f" // between a pair's name and value (US)

	seedDomainHi = "\x00pcg:hi"
	seedDomainLo = "\x00pcg:lo"
)

// Seed is the deterministic seed for one invocation's random source. Two
// words because the PCG source takes a 128-bit state.
type Seed struct {
	Hi uint64
	Lo uint64
}

// deriveSeed maps an invocation's identifying tuple to a deterministic
// seed. It is a pure function of (collectionID, generator name, parameter
// assignment, repeat index): never of wall-clock time, process state or
// prior random draws, and never of unrelated registrations.
//
// The tuple is serialized into a canonical byte string (assignment pairs
// sorted by parameter name, values rendered with cast.ToString) and hashed
// with xxhash64 under two domain suffixes, one per seed word.
func deriveSeed(collectionID uint64, generator string, a Assignment, repeatIndex int) Seed {
	canonical := canonicalKey(collectionID, generator, a, repeatIndex)
	return Seed{
		Hi: xxhash.Sum64String(canonical + seedDomainHi),
		Lo: xxhash.Sum64String(canonical + seedDomainLo),
	}
}

// canonicalKey serializes the identifying tuple. Changing any component,
// including a single parameter value or the repeat index, changes the key.
func canonicalKey(collectionID uint64, generator string, a Assignment, repeatIndex int) string {
	var b []byte
	b = strconv.AppendUint(b, collectionID, 10)
	b = append(b, seedSepComponent...)
	b = append(b, generator...)
	b = append(b, seedSepComponent...)

	for i, pair := range a.sortedByName() {
		if i > 0 {
			b = append(b, seedSepPair...)
		}
		b = append(b, pair.Name...)
		b = append(b, seedSepNameValue...)
		b = append(b, cast.ToString(pair.Value)...)
	}

	b = append(b, seedSepComponent...)
	b = strconv.AppendInt(b, int64(repeatIndex), 10)
	return string(b)
}
