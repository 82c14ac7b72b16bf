// Package entropy provides high-entropy seeds for campaigns that want
// non-reproducible variation, such as a freshly rolled campaign seed.
// Everything date-driven stays deterministic; this is only for the
// host's "surprise me" paths.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
)

// Seed returns a random int64 from crypto/rand, suitable for seeding a
// pseudo-random generator.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing means the platform is broken; a fixed
		// seed keeps the simulation runnable.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// Float returns a uniform float64 in [0, 1) from crypto/rand.
func Float() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
