package plagiarism

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestHashKGram(t *testing.T) {
	// ((97*31)+98)*31+99 = 96354
	if got := HashKGram([]rune("abc"), DefaultHashSize); got != 96354 {
		t.Fatalf("expect 96354, got %d", got)
	}
	if got := HashKGram([]rune("abc"), 1000); got != 354 {
		t.Fatalf("expect 354 mod 1000, got %d", got)
	}
	if got := HashKGram(nil, DefaultHashSize); got != 0 {
		t.Fatalf("expect empty k-gram to hash to 0, got %d", got)
	}
}

func TestHashKGramsRange(t *testing.T) {
	grams, err := ExtractKGramRunes([]rune(strings.Repeat("zyxwvutsrq", 20)), 9)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	const size = 101
	hashes, err := HashKGrams(grams, size)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for i, h := range hashes {
		if h >= size {
			t.Fatalf("hash %d out of range: %d", i, h)
		}
	}
}

func TestValidateHashSize(t *testing.T) {
	for _, size := range []uint64{1, DefaultHashSize, MaxHashSize} {
		if err := ValidateHashSize(size); err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
	}
	for _, size := range []uint64{0, MaxHashSize + 1} {
		if err := ValidateHashSize(size); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("size %d: expect ErrInvalidArgument, got %v", size, err)
		}
	}
	if _, err := HashKGrams(nil, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument, got %v", err)
	}
}

func independentHashes(t testing.TB, doc []rune, k int, size uint64) []uint64 {
	t.Helper()
	grams, err := ExtractKGramRunes(doc, k)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	hashes, err := HashKGrams(grams, size)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hashes
}

// TestRollingHashesMatchIndependent checks the rolling hash bit for bit
// against refolding every k-gram.
func TestRollingHashesMatchIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcdefgh{}();=+-*/ é中𝄞")
	sizes := []uint64{1, 2, 97, DefaultHashSize, MaxHashSize - 1, MaxHashSize}

	for _, size := range sizes {
		for _, n := range []int{0, 1, 5, 64, 500} {
			doc := make([]rune, n)
			for i := range doc {
				doc[i] = alphabet[rng.Intn(len(alphabet))]
			}
			for _, k := range []int{1, 2, 5, 13, n, n + 3} {
				if k <= 0 {
					continue
				}
				t.Run(fmt.Sprintf("size=%d/n=%d/k=%d", size, n, k), func(t *testing.T) {
					got, err := RollingHashes(doc, k, size)
					if err != nil {
						t.Fatalf("rolling: %v", err)
					}
					want := independentHashes(t, doc, k, size)
					if !reflect.DeepEqual(got, want) {
						t.Fatalf("rolling hashes differ from independent hashes\nwant %v\ngot  %v", want, got)
					}
				})
			}
		}
	}
}

func TestRollingHashesInvalid(t *testing.T) {
	if _, err := RollingHashes([]rune("abc"), 0, DefaultHashSize); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument for k=0, got %v", err)
	}
	if _, err := RollingHashes([]rune("abc"), 2, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument for empty hash space, got %v", err)
	}
}

func benchmarkDoc(n int) []rune {
	rng := rand.New(rand.NewSource(1))
	doc := make([]rune, n)
	for i := range doc {
		doc[i] = rune('a' + rng.Intn(26))
	}
	return doc
}

// BenchmarkHashing compares the rolling and independent hashes.
func BenchmarkHashing(b *testing.B) {
	doc := benchmarkDoc(1 << 16)
	for _, k := range []int{5, 25} {
		b.Run(fmt.Sprintf("rolling/k=%d", k), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := RollingHashes(doc, k, DefaultHashSize); err != nil {
					b.Fatalf("rolling: %v", err)
				}
			}
		})
		b.Run(fmt.Sprintf("independent/k=%d", k), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				grams, _ := ExtractKGramRunes(doc, k)
				if _, err := HashKGrams(grams, DefaultHashSize); err != nil {
					b.Fatalf("hash: %v", err)
				}
			}
		})
	}
}
