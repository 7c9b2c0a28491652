package plagiarism

import "fmt"

// MatchPositions holds, for a pair of fingerprints, the positions of each
// whose hash value also occurs in the other.
type MatchPositions struct {
	A []int `json:"a" bson:"a"`
	B []int `json:"b" bson:"b"`
}

// MatchFingerprints returns the positions of a whose value occurs anywhere
// in b, and the positions of b whose value occurs anywhere in a. Each list
// is deduplicated and keeps first-occurrence order.
func MatchFingerprints(a, b Fingerprint) (MatchPositions, error) {
	if err := a.Validate(); err != nil {
		return MatchPositions{}, fmt.Errorf("first fingerprint: %w", err)
	}
	if err := b.Validate(); err != nil {
		return MatchPositions{}, fmt.Errorf("second fingerprint: %w", err)
	}

	return MatchPositions{
		A: matchedPositions(a, valueSet(b.Values)),
		B: matchedPositions(b, valueSet(a.Values)),
	}, nil
}

func valueSet(values []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func matchedPositions(fp Fingerprint, other map[uint64]struct{}) []int {
	matched := make([]int, 0)
	seen := make(map[int]struct{})
	for i, v := range fp.Values {
		if _, ok := other[v]; !ok {
			continue
		}
		pos := fp.Positions[i]
		if _, dup := seen[pos]; dup {
			continue
		}
		seen[pos] = struct{}{}
		matched = append(matched, pos)
	}
	return matched
}

// SharedValues counts the distinct hash values present in both fingerprints.
func SharedValues(a, b Fingerprint) int {
	other := valueSet(b.Values)
	shared := 0
	for v := range valueSet(a.Values) {
		if _, ok := other[v]; ok {
			shared++
		}
	}
	return shared
}
