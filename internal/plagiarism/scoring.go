package plagiarism

// SimilarityScore returns the fraction of a document of totalLength
// characters covered by at least one matched span. Each matched position
// is the one-based start of a span of k characters; the parts of a span
// outside the document are ignored. An empty document scores 0.
func SimilarityScore(matched []int, k, totalLength int) float64 {
	if totalLength <= 0 {
		return 0.0
	}

	covered := 0
	for _, c := range CoverageMask(matched, k, totalLength) {
		if c {
			covered++
		}
	}
	return float64(covered) / float64(totalLength)
}

// CoverageMask marks the characters covered by the one-based spans
// [p, p+k) of matched.
func CoverageMask(matched []int, k, totalLength int) []bool {
	if totalLength <= 0 {
		return []bool{}
	}

	mask := make([]bool, totalLength)
	for _, p := range matched {
		for i := p - 1; i < p-1+k; i++ {
			if i >= 0 && i < totalLength {
				mask[i] = true
			}
		}
	}
	return mask
}

// OneBased shifts zero-based fingerprint positions to the one-based
// offsets SimilarityScore and the highlighter expect.
func OneBased(positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = p + 1
	}
	return out
}

// RiskLevel labels an overall similarity score.
func RiskLevel(score float64) string {
	if score < 0.3 {
		return "clean"
	} else if score < 0.6 {
		return "suspicious"
	} else if score < 0.85 {
		return "highly suspicious"
	}
	return "near copy"
}

// OverallScore combines the per-document scores of a pair.
func OverallScore(scoreA, scoreB float64) float64 {
	return (scoreA + scoreB) / 2
}
