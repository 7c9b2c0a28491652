package plagiarism

import "sort"

// HashIndex maps a fingerprint value to the documents that selected it.
type HashIndex map[uint64][]int

// BuildHashIndex indexes the fingerprint values of docs by document index.
// A document is listed once per value even if it selected the value at
// several positions.
func BuildHashIndex(docs []*DocumentFingerprint) HashIndex {
	index := make(HashIndex)
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		seen := make(map[uint64]struct{}, doc.Fingerprint.Len())
		for _, v := range doc.Fingerprint.Values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			index[v] = append(index[v], i)
		}
	}
	return index
}

// Candidates returns, in ascending order, the indexed documents sharing at
// least one value with values. Documents outside this set cannot match.
func (idx HashIndex) Candidates(values []uint64) []int {
	set := make(map[int]struct{})
	for _, v := range values {
		for _, doc := range idx[v] {
			set[doc] = struct{}{}
		}
	}

	candidates := make([]int, 0, len(set))
	for doc := range set {
		candidates = append(candidates, doc)
	}
	sort.Ints(candidates)
	return candidates
}
