package plagiarism

import "fmt"

const (
	// hashBase is the multiplier of the polynomial hash.
	hashBase uint64 = 31

	// DefaultHashSize bounds hash values to [0, 2^20).
	DefaultHashSize uint64 = 1 << 20

	// MaxHashSize keeps 31*h + c inside a uint64 for any code point c.
	MaxHashSize uint64 = 1 << 32
)

// ValidateHashSize rejects hash spaces that are empty or too large to fold
// without overflow.
func ValidateHashSize(hashSize uint64) error {
	if hashSize == 0 || hashSize > MaxHashSize {
		return fmt.Errorf("%w: hash size must be in (0, %d], got %d", ErrInvalidArgument, MaxHashSize, hashSize)
	}
	return nil
}

// HashKGram folds the character codes of kgram left to right:
//
//	h = (c + 31*h) mod hashSize
//
// starting from zero. An empty k-gram hashes to 0. hashSize must already
// be validated.
func HashKGram(kgram []rune, hashSize uint64) uint64 {
	var h uint64
	for _, c := range kgram {
		h = (uint64(c) + hashBase*h) % hashSize
	}
	return h
}

// HashKGrams hashes every k-gram independently, O(n*k) in total.
func HashKGrams(kgrams [][]rune, hashSize uint64) ([]uint64, error) {
	if err := ValidateHashSize(hashSize); err != nil {
		return nil, err
	}

	hashes := make([]uint64, len(kgrams))
	for i, g := range kgrams {
		hashes[i] = HashKGram(g, hashSize)
	}
	return hashes, nil
}

// RollingHashes returns the hash of every k-gram of doc in O(n), sliding
// the previous value instead of refolding each k-gram. The result is
// identical to HashKGrams(ExtractKGramRunes(doc, k)), including the
// single-k-gram fallback when k > len(doc).
func RollingHashes(doc []rune, k int, hashSize uint64) ([]uint64, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be a positive integer, got %d", ErrInvalidArgument, k)
	}
	if err := ValidateHashSize(hashSize); err != nil {
		return nil, err
	}

	if k > len(doc) {
		return []uint64{HashKGram(doc, hashSize)}, nil
	}

	// 31^(k-1) mod hashSize, the weight of the outgoing character.
	lead := uint64(1) % hashSize
	for i := 0; i < k-1; i++ {
		lead = (lead * hashBase) % hashSize
	}

	hashes := make([]uint64, 0, len(doc)-k+1)
	h := HashKGram(doc[:k], hashSize)
	hashes = append(hashes, h)

	for i := 1; i+k <= len(doc); i++ {
		out := (uint64(doc[i-1]) % hashSize) * lead % hashSize
		h = (h + hashSize - out) % hashSize
		h = (h*hashBase + uint64(doc[i+k-1])) % hashSize
		hashes = append(hashes, h)
	}
	return hashes, nil
}
