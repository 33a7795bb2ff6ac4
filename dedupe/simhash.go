package dedupe

import (
	"math/bits"
	"strings"

	"github.com/zeebo/xxh3"
)

// fingerprintBits is the SimHash width.
const fingerprintBits = 128

// shingleSize is the number of words per hashed shingle.
const shingleSize = 3

// Fingerprint is a 128-bit SimHash value. The zero value is the sentinel
// for empty text.
type Fingerprint struct {
	Hi uint64
	Lo uint64
}

// Simhash computes the 128-bit SimHash of text over 3-word shingles of the
// lowercased input. Each shingle is hashed with a 128-bit hash; for every
// bit position a counter is incremented when the shingle hash has the bit
// set and decremented otherwise. The fingerprint bit is 1 where the
// accumulated counter is positive. Empty text hashes to the zero value.
func Simhash(text string) Fingerprint {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return Fingerprint{}
	}

	var v [fingerprintBits]int
	n := len(words) - (shingleSize - 1)
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		end := i + shingleSize
		if end > len(words) {
			end = len(words)
		}
		shingle := strings.Join(words[i:end], " ")
		h := xxh3.Hash128([]byte(shingle))
		for j := 0; j < 64; j++ {
			if h.Lo&(1<<uint(j)) != 0 {
				v[j]++
			} else {
				v[j]--
			}
		}
		for j := 0; j < 64; j++ {
			if h.Hi&(1<<uint(j)) != 0 {
				v[64+j]++
			} else {
				v[64+j]--
			}
		}
	}

	var fp Fingerprint
	for j := 0; j < 64; j++ {
		if v[j] > 0 {
			fp.Lo |= 1 << uint(j)
		}
	}
	for j := 0; j < 64; j++ {
		if v[64+j] > 0 {
			fp.Hi |= 1 << uint(j)
		}
	}
	return fp
}

// Similarity returns the normalized Hamming similarity of two
// fingerprints: 1 - hammingDistance/128. Identical fingerprints score 1.0.
func Similarity(a, b Fingerprint) float64 {
	hamming := bits.OnesCount64(a.Lo^b.Lo) + bits.OnesCount64(a.Hi^b.Hi)
	return 1.0 - float64(hamming)/float64(fingerprintBits)
}
