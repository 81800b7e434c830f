// Package minhash implements the MinHash + LSH index (C4): bucket-based
// near-neighbor candidate generation over shingle sets, grounded on the
// permutation-hash MinHash sketch shape from the reference corpus's
// chapter-09 minhash example, adapted to xxhash and banded LSH lookup.
package minhash

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/e4c5/dupscan/internal/window"
)

// Config mirrors §6's enumerated LSH options.
type Config struct {
	NumHashFunctions int // H, default 100
	NumBands         int // B, default 50
	RowsPerBand      int // R, default 2
}

// DefaultConfig matches spec.md §6 defaults.
var DefaultConfig = Config{NumHashFunctions: 100, NumBands: 50, RowsPerBand: 2}

// permutation is one (a, b) pair of a 64-bit affine hash a*x+b mod prime,
// simulating one of the H independent hash functions MinHash needs.
type permutation struct{ a, b uint64 }

// mersennePrime61 is the modulus for the affine permutation family, a
// standard choice (2^61 - 1). The multiplier a is a full 64-bit value, so
// a*x+b wraps modulo 2^64 before this reduction is applied.
const mersennePrime61 = (1 << 61) - 1

// Index accumulates MinHash signatures banded into bucket tables. It is
// safe for concurrent queryAndAdd calls: the whole operation runs under a
// single mutex, matching §5's "wrap the index in a critical section"
// requirement.
type Index struct {
	cfg   Config
	perms []permutation

	mu      sync.Mutex
	buckets []map[uint64][]window.Window // one bucket table per band
}

// NewIndex builds an index whose permutation seeds are derived
// deterministically from a fixed process seed, so repeated runs over the
// same corpus and config produce byte-identical signatures (§5
// determinism).
func NewIndex(cfg Config) *Index {
	if cfg.NumHashFunctions <= 0 {
		cfg = DefaultConfig
	}
	perms := make([]permutation, cfg.NumHashFunctions)
	var seed uint64 = 0x9E3779B97F4A7C15 // fixed, not time-derived: determinism over randomness
	for i := range perms {
		seed = splitmix64(seed)
		a := seed | 1 // odd multiplier avoids collapsing the permutation
		seed = splitmix64(seed)
		b := seed
		perms[i] = permutation{a: a, b: b}
	}
	buckets := make([]map[uint64][]window.Window, cfg.NumBands)
	for i := range buckets {
		buckets[i] = make(map[uint64][]window.Window)
	}
	return &Index{cfg: cfg, perms: perms, buckets: buckets}
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Signature computes the fixed-width MinHash vector for a shingle set.
func (idx *Index) Signature(shingles []string) []uint64 {
	sig := make([]uint64, len(idx.perms))
	for i := range sig {
		sig[i] = ^uint64(0)
	}
	for _, s := range shingles {
		x := xxhash.Sum64String(s) % mersennePrime61
		for i, p := range idx.perms {
			h := (p.a*x + p.b) % mersennePrime61
			if h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig
}

// bandKey hashes band b's R-row slice of sig to a single bucket key.
func (idx *Index) bandKey(sig []uint64, band int) uint64 {
	r := idx.cfg.RowsPerBand
	start := band * r
	end := start + r
	if end > len(sig) {
		end = len(sig)
	}
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, v := range sig[start:end] {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		_, _ = h.Write(buf)
	}
	// Fold the band index in so identical row-slices in different bands
	// never collide with each other's buckets.
	return h.Sum64() ^ (uint64(band) * 0x9E3779B97F4A7C15)
}

// QueryAndAdd atomically (a) computes w's signature from shingles, (b)
// hashes each band, (c) returns every previously-inserted window sharing
// at least one band bucket, and (d) inserts w into every band bucket.
// Per §4.4, the returned set reflects only what was present at call
// start; w becomes visible to later calls only.
func (idx *Index) QueryAndAdd(shingles []string, w window.Window) []window.Window {
	sig := idx.Signature(shingles)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := map[window.IdentityKey]bool{}
	var candidates []window.Window
	keys := make([]uint64, idx.cfg.NumBands)
	for band := 0; band < idx.cfg.NumBands; band++ {
		key := idx.bandKey(sig, band)
		keys[band] = key
		for _, other := range idx.buckets[band][key] {
			id := other.Identity()
			if !seen[id] {
				seen[id] = true
				candidates = append(candidates, other)
			}
		}
	}
	for band, key := range keys {
		idx.buckets[band][key] = append(idx.buckets[band][key], w)
	}
	return candidates
}
